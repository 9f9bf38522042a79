package tui

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tidepool/internal/content"
	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/game"
	"github.com/vovakirdan/tidepool/internal/levels"
	"github.com/vovakirdan/tidepool/internal/storage"
)

// Env is what the screens share: where levels and templates come from, where
// runs are recorded and who is playing.
type Env struct {
	Loader      *levels.Loader
	Catalog     *content.Catalog
	CatalogPath string         // reloaded on file changes when set
	Store       *storage.Store // nil disables run recording
	Logger      *log.Logger
	Player      string
	Config      core.RuntimeConfig
	// ScreenshotDir receives ctrl+s screenshots. Empty disables them.
	ScreenshotDir string
}

func (e Env) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

// NewSession builds a play session for lvl with scripts resolved next to the
// level file.
func (e Env) NewSession(lvl levels.Level) (*game.Session, error) {
	opts := []game.Option{
		game.WithCatalog(e.Catalog),
		game.WithLogger(e.logger()),
	}
	if e.Loader != nil {
		scripts, err := e.Loader.ScriptFS(lvl)
		if err != nil {
			return nil, err
		}
		opts = append(opts, game.WithScriptFS(scripts))
	}
	return game.New(lvl, opts...)
}

// reload rereads the catalog (when it came from a file) and the level.
func (e *Env) reload(lvl levels.Level) (levels.Level, error) {
	if e.CatalogPath != "" {
		catalog, err := content.Load(e.CatalogPath)
		if err != nil {
			return lvl, err
		}
		e.Catalog = catalog
	}
	if e.Loader == nil || lvl.Source == "" {
		return lvl, nil
	}
	return e.Loader.LoadFile(lvl.Source)
}

// best returns the fewest moves among recorded solutions, or 0.
func (e Env) best(levelID string) int {
	if e.Store == nil {
		return 0
	}
	n, err := e.Store.BestSolution(levelID)
	if err != nil {
		e.logger().Warn("could not read best solution", "level", levelID, "error", err)
		return 0
	}
	return n
}

// record saves a finished attempt. Failures are logged and otherwise ignored.
func (e Env) record(lvl levels.Level, s *game.Session) {
	if e.Store == nil {
		return
	}
	st := s.Status()
	run, err := e.Store.SaveRun(storage.Run{
		LevelID: lvl.ID,
		Player:  e.Player,
		Moves:   s.Moves(),
		Solved:  st.Solved,
	})
	if err != nil {
		e.logger().Warn("could not save run", "level", lvl.ID, "error", err)
		return
	}
	e.logger().Info("run saved", "level", lvl.ID, "run", run.RunID, "moves", run.MoveCount, "solved", run.Solved)
}

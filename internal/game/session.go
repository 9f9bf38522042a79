// Package game runs one level as a playable session: it builds the world from
// a level, drives the player turn by turn and draws the current room.
package game

import (
	"io"
	"io/fs"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/oops"

	"github.com/vovakirdan/tidepool/internal/behavior"
	"github.com/vovakirdan/tidepool/internal/content"
	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/levels"
	"github.com/vovakirdan/tidepool/internal/script"
	"github.com/vovakirdan/tidepool/internal/sim"
)

// CodeInvalidMoves marks replay strings with unknown move letters.
const CodeInvalidMoves = "INVALID_MOVES"

// Status summarizes a session after a step.
type Status struct {
	Moves  int
	Solved bool
	Dead   bool
}

// Over reports whether the session accepts no more moves.
func (s Status) Over() bool {
	return s.Solved || s.Dead
}

// Option configures a Session.
type Option func(*Session)

// WithCatalog sets the template catalog. Defaults to content.Default().
func WithCatalog(c *content.Catalog) Option {
	return func(s *Session) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithLogger sets the logger shared by the world, behaviors and scripts.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScriptFS sets where ".lua" script references are read from.
func WithScriptFS(fsys fs.FS) Option {
	return func(s *Session) { s.scriptFS = fsys }
}

// Session is a level in play.
type Session struct {
	level    levels.Level
	catalog  *content.Catalog
	logger   *log.Logger
	scriptFS fs.FS

	world  *sim.World
	player *sim.Entity
	engine *script.Engine
	moves  []core.Direction
	cues   []sim.Cue
}

// New builds a session for level and starts its world.
func New(level levels.Level, opts ...Option) (*Session, error) {
	s := &Session{
		level:   level,
		catalog: content.Default(),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) build() error {
	engine := script.NewEngine(script.WithFS(s.scriptFS), script.WithLogger(s.logger))
	binder := behavior.NewBinder(behavior.WithScripts(engine), behavior.WithLogger(s.logger))
	w := sim.NewWorld(s.level.RoomSize,
		sim.WithLogger(s.logger),
		sim.WithTemplates(s.catalog),
		sim.WithColors(s.catalog),
		sim.WithBinder(binder),
	)

	fail := func(err error) error {
		engine.Close()
		return oops.In("game").With("level", s.level.ID).Wrapf(err, "building level")
	}
	if err := w.PopulateFromTemplate(s.level.ToWorldTemplate()); err != nil {
		return fail(err)
	}
	player, err := w.Spawn(sim.PlayerTemplate, s.level.Player, nil)
	if err != nil {
		return fail(err)
	}
	if err := binder.Err(); err != nil {
		return fail(err)
	}

	if s.engine != nil {
		s.engine.Close()
	}
	s.world = w
	s.player = player
	s.engine = engine
	s.moves = s.moves[:0]

	w.AddMoveListener(s.follow)
	w.Start()
	w.EnterRoom(w.GetRoomAt(player.Position))
	w.UpdateEntityList()
	s.cues = w.DrainCues()
	s.logger.Debug("session started", "level", s.level.ID, "entities", len(w.AllEntitiesIncludingInactive()))
	return nil
}

// follow moves the camera when the player lands in another room.
func (s *Session) follow(data sim.MoveData, status *sim.MoveStatus) {
	if data.Mover != s.player.ID || !status.WasSuccessful {
		return
	}
	if s.world.CurrentRoom().Contains(s.player.Position) {
		return
	}
	s.world.SetCurrentRoom(s.world.GetRoomAt(s.player.Position))
}

// Level returns the level being played.
func (s *Session) Level() levels.Level { return s.level }

// World returns the live world.
func (s *Session) World() *sim.World { return s.world }

// Player returns the player entity.
func (s *Session) Player() *sim.Entity { return s.player }

// Cues returns the presentation cues produced by the last step or reset.
func (s *Session) Cues() []sim.Cue { return s.cues }

// Step attempts one player move, or waits for DirNone, then advances the turn
// and flushes destroyed entities. Steps after the session is over are ignored.
func (s *Session) Step(dir core.Direction) Status {
	if s.Status().Over() {
		return s.Status()
	}
	if dir != core.DirNone {
		s.world.Rules().AttemptMoveInDirection(s.player, dir)
	}
	s.world.Turn()
	s.world.UpdateEntityList()
	s.moves = append(s.moves, dir)
	s.cues = s.world.DrainCues()
	return s.Status()
}

// Status reports the move count and win/loss state.
func (s *Session) Status() Status {
	return Status{
		Moves:  len(s.moves),
		Solved: s.solved(),
		Dead:   s.world.IsDestroyed(s.player) || !s.player.Active,
	}
}

// solved is true once every goal is reached. Levels without goals never solve.
func (s *Session) solved() bool {
	goals := s.world.EntitiesWithTag(sim.TagGoal)
	if len(goals) == 0 {
		return false
	}
	for _, g := range goals {
		if !g.State.GetBoolOrFallback(behavior.KeyReached, false) {
			return false
		}
	}
	return true
}

// Reset rebuilds the level from scratch.
func (s *Session) Reset() error {
	return s.build()
}

// Undo rebuilds the level and replays every move but the last.
func (s *Session) Undo() error {
	if len(s.moves) == 0 {
		return nil
	}
	history := append([]core.Direction(nil), s.moves[:len(s.moves)-1]...)
	if err := s.build(); err != nil {
		return err
	}
	for _, d := range history {
		s.Step(d)
	}
	return nil
}

// Moves returns the move history in replay notation.
func (s *Session) Moves() string {
	var b strings.Builder
	for _, d := range s.moves {
		b.WriteRune(d.Rune())
	}
	return b.String()
}

// ParseMoves converts replay notation (U, R, D, L and '.' for wait) into
// directions. Whitespace is ignored.
func ParseMoves(moves string) ([]core.Direction, error) {
	out := make([]core.Direction, 0, len(moves))
	for i, r := range moves {
		if r == ' ' || r == '\n' || r == '\t' || r == ',' {
			continue
		}
		d, ok := core.ParseDirection(r)
		if !ok {
			return nil, oops.Code(CodeInvalidMoves).In("game").With("offset", i).Errorf("invalid move %q", r)
		}
		out = append(out, d)
	}
	return out, nil
}

// Replay applies moves from the current state and stops early once the session
// is over.
func (s *Session) Replay(moves string) (Status, error) {
	dirs, err := ParseMoves(moves)
	if err != nil {
		return s.Status(), err
	}
	for _, d := range dirs {
		if s.Step(d).Over() {
			break
		}
	}
	return s.Status(), nil
}

// Close releases script states.
func (s *Session) Close() {
	if s.engine != nil {
		s.engine.Close()
		s.engine = nil
	}
}

// Glyph drawn on tiles with nothing visible.
const floorGlyph = '.'

// Render draws the current room into dst with the room's top-left corner at
// the screen origin. Active entities draw over background ones, then lower
// sort priority wins. Floor and inactive entities are dimmed.
func (s *Session) Render(dst *core.Screen) {
	room := s.world.CurrentRoom()
	tl := room.TopLeft()

	var visible []*sim.Entity
	for _, e := range s.world.AllEntitiesIncludingInactive() {
		if e.Appearance != nil && room.Contains(e.Position) {
			visible = append(visible, e)
		}
	}
	// Paint back to front so the winner lands last.
	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if a.Active != b.Active {
			return !a.Active
		}
		return a.SortPriority() > b.SortPriority()
	})

	for y := 0; y < room.Height(); y++ {
		for x := 0; x < room.Width(); x++ {
			dst.SetDimmed(x, y, floorGlyph, core.ColorGray)
		}
	}
	for _, e := range visible {
		p := e.Position.Sub(tl)
		if e.Active {
			dst.SetColored(p.X, p.Y, e.Appearance.Glyph, e.Appearance.Color)
		} else {
			dst.SetDimmed(p.X, p.Y, e.Appearance.Glyph, e.Appearance.Color)
		}
	}
}

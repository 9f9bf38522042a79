package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/game"
	"github.com/vovakirdan/tidepool/internal/storage"
)

var (
	flagSave   bool
	flagFrames bool
	flagPlayer string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <level> <moves>",
	Short: "Replay a move string headlessly",
	Long: `Apply a move string to a level and print the final room and status.
Moves are U, R, D, L and '.' for waiting a turn; spaces and commas are ignored.
Exits with status 1 if a move is invalid.

Examples:
  tidepool simulate 04-portal RRU
  tidepool simulate 02-moat "RRRR RRRRR" --frames
  tidepool simulate 01-first-plate RRRDDDD --save`,
	Args: cobra.ExactArgs(2),
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVar(&flagSave, "save", false, "Record the run in the database")
	simulateCmd.Flags().BoolVar(&flagFrames, "frames", false, "Print the room after every move")
	simulateCmd.Flags().StringVar(&flagPlayer, "player", "simulate", "Player name for saved runs")
}

func runSimulate(cmd *cobra.Command, args []string) {
	d, err := setup()
	if err != nil {
		fail("%v", err)
	}

	lvl, err := d.loader.LoadByID(args[0])
	if err != nil {
		fail("%v", err)
	}
	moves, err := game.ParseMoves(args[1])
	if err != nil {
		fail("%v", err)
	}
	scripts, err := d.loader.ScriptFS(lvl)
	if err != nil {
		fail("%v", err)
	}

	s, err := game.New(lvl,
		game.WithCatalog(d.catalog),
		game.WithLogger(d.logger),
		game.WithScriptFS(scripts),
	)
	if err != nil {
		fail("%v", err)
	}
	defer s.Close()

	st := s.Status()
	for i, dir := range moves {
		st = s.Step(dir)
		for _, c := range s.Cues() {
			d.logger.Debug("cue", "move", i+1, "kind", c.Kind, "name", c.Name, "at", c.Position)
		}
		if flagFrames {
			fmt.Printf("move %d: %c\n%s\n\n", i+1, dir.Rune(), frame(s))
		}
		if st.Over() {
			break
		}
	}

	if !flagFrames {
		fmt.Println(frame(s))
		fmt.Println()
	}
	fmt.Printf("level %s  moves %d", lvl.ID, st.Moves)
	if lvl.Par > 0 {
		fmt.Printf("  par %d", lvl.Par)
	}
	switch {
	case st.Solved:
		fmt.Println("  solved")
	case st.Dead:
		fmt.Println("  dead")
	default:
		fmt.Println("  unsolved")
	}

	if flagSave && st.Moves > 0 {
		store, err := storage.Open(d.cfg.Paths.Database)
		if err != nil {
			fail("%v", err)
		}
		defer store.Close()
		run, err := store.SaveRun(storage.Run{
			LevelID: lvl.ID,
			Player:  flagPlayer,
			Moves:   s.Moves(),
			Solved:  st.Solved,
		})
		if err != nil {
			fail("%v", err)
		}
		d.logger.Info("run saved", "run", run.RunID)
	}
}

// frame renders the current room as plain text.
func frame(s *game.Session) string {
	room := s.World().CurrentRoom()
	scr := core.NewScreen(room.Width(), room.Height())
	s.Render(scr)
	return scr.String()
}

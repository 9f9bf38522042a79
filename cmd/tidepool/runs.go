package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tidepool/internal/storage"
)

var (
	flagLimit int
	flagClear bool
)

var runsCmd = &cobra.Command{
	Use:   "runs <level>",
	Short: "Show the best runs of a level",
	Long: `Display the best recorded runs for the specified level: solved runs
first, then fewest moves.

Examples:
  tidepool runs 02-moat
  tidepool runs 02-moat --limit 3
  tidepool runs 02-moat --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all runs of the level")
}

func runRuns(cmd *cobra.Command, args []string) {
	levelID := args[0]

	d, err := setup()
	if err != nil {
		fail("%v", err)
	}
	lvl, err := d.loader.LoadByID(levelID)
	if err != nil {
		fail("%v\nRun 'tidepool list' to see available levels.", err)
	}

	store, err := storage.Open(d.cfg.Paths.Database)
	if err != nil {
		fail("opening run database: %v", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRuns(levelID); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Cleared runs for %s.\n", levelID)
		return
	}

	runs, err := store.BestRuns(levelID, flagLimit)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("Best Runs - %s\n", lvl.Name)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'tidepool play %s' to set the first record!\n", levelID)
		return
	}

	fmt.Printf("  %-4s  %-5s  %-6s  %-12s  %-16s  %s\n", "Rank", "Moves", "Solved", "Player", "Date", "Replay")
	fmt.Printf("  %-4s  %-5s  %-6s  %-12s  %-16s  %s\n", "----", "-----", "------", "------", "----", "------")
	for i, r := range runs {
		solved := "no"
		if r.Solved {
			solved = "yes"
		}
		fmt.Printf("  %-4d  %-5d  %-6s  %-12s  %-16s  %s\n",
			i+1, r.MoveCount, solved, r.Player, r.CreatedAt.Format("2006-01-02 15:04"), r.Moves)
	}

	fmt.Println()
	if best, err := store.BestSolution(levelID); err == nil && best > 0 {
		fmt.Printf("Best: %d", best)
		if lvl.Par > 0 {
			fmt.Printf(" (par %d)", lvl.Par)
		}
		fmt.Println()
	}
}

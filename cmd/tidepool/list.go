package main

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
)

var flagMatch string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available levels",
	Long: `Shows every level the level directory holds. Files that fail to load
are reported as warnings.

Examples:
  tidepool list
  tidepool list --match '0*'
  tidepool list --levels ./my-levels`,
	Run: runList,
}

func init() {
	listCmd.Flags().StringVar(&flagMatch, "match", "*", "Glob pattern on level IDs")
}

func runList(cmd *cobra.Command, args []string) {
	d, err := setup()
	if err != nil {
		fail("%v", err)
	}

	g, err := glob.Compile(flagMatch)
	if err != nil {
		fail("invalid pattern %q: %v", flagMatch, err)
	}

	if err := d.loader.Check(); err != nil {
		d.logger.Warn("some levels could not be loaded", "error", err)
	}
	all, err := d.loader.LoadAll()
	if err != nil {
		fail("%v", err)
	}

	maxIDLen := 2 // "ID" header
	shown := all[:0]
	for _, lvl := range all {
		if !g.Match(lvl.ID) {
			continue
		}
		shown = append(shown, lvl)
		maxIDLen = max(maxIDLen, len(lvl.ID))
	}

	if len(shown) == 0 {
		fmt.Println("No levels available.")
		return
	}

	fmt.Println("Available levels:")
	fmt.Println()
	fmt.Printf("  %-*s  %-5s  %-6s  %s\n", maxIDLen, "ID", "Room", "Par", "Name")
	fmt.Printf("  %-*s  %-5s  %-6s  %s\n", maxIDLen, "--", "----", "---", "----")
	for _, lvl := range shown {
		par := "-"
		if lvl.Par > 0 {
			par = fmt.Sprint(lvl.Par)
		}
		room := fmt.Sprintf("%dx%d", lvl.RoomSize.X, lvl.RoomSize.Y)
		fmt.Printf("  %-*s  %-5s  %-6s  %s\n", maxIDLen, lvl.ID, room, par, lvl.Name)
	}

	fmt.Println()
	fmt.Println("Run 'tidepool play <id>' to play a level.")
}

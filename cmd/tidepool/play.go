package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tidepool/internal/config"
	"github.com/vovakirdan/tidepool/internal/platform/tui"
	"github.com/vovakirdan/tidepool/internal/watch"
)

var flagWatch bool

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Play a level",
	Long: `Start playing the given level, or pick one from the level menu.

Controls:
  Arrows/WASD/HJKL - Move
  Space/.          - Wait a turn
  U/Z              - Undo
  R                - Restart
  Esc              - Back
  Q/Ctrl+C         - Quit
  Ctrl+S           - Save a screenshot

With --watch, editing the level file, its scripts or the template catalog
reloads the level in place.

Examples:
  tidepool play
  tidepool play 03-drawbridge
  tidepool play my-level --levels ./levels --watch`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload the level when its files change (overrides config)")
}

func runPlay(cmd *cobra.Command, args []string) {
	d, err := setup()
	if err != nil {
		fail("%v", err)
	}

	runtime := d.runtime
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		runtime.ScreenW = w
		runtime.ScreenH = h
	}

	store := d.openStore()
	if store != nil {
		defer store.Close()
	}

	user := os.Getenv("USER")
	if user == "" {
		user = "local"
	}
	env := &tui.Env{
		Loader:      d.loader,
		Catalog:     d.catalog,
		CatalogPath: config.ExpandHome(d.cfg.Paths.Templates),
		Store:       store,
		Player:      user,
		Config:      runtime,

		ScreenshotDir: config.ExpandHome("~/.tidepool/screenshots"),
	}

	if len(args) == 0 {
		if err := tui.RunApp(env); err != nil {
			fail("%v", err)
		}
		return
	}

	lvl, err := d.loader.LoadByID(args[0])
	if err != nil {
		fail("%v\nRun 'tidepool list' to see available levels.", err)
	}

	var w *watch.Watcher
	if flagWatch || d.cfg.Play.Watch {
		if d.cfg.Paths.Levels == "" {
			d.logger.Warn("built-in levels cannot be watched; use --levels")
		} else {
			paths := []string{filepath.Dir(lvl.FilePath)}
			if env.CatalogPath != "" {
				paths = append(paths, env.CatalogPath)
			}
			w, err = watch.New(d.cfg.Play.Debounce(), paths...)
			if err != nil {
				fail("watching %s: %v", paths[0], err)
			}
			defer w.Close()
		}
	}

	if err := tui.Run(env, lvl, w); err != nil {
		fail("%v", err)
	}
}

// tidepool is a turn-based tile puzzle game for the terminal.
//
// Usage:
//
//	tidepool list                  - List available levels
//	tidepool templates             - List entity templates
//	tidepool play [level]          - Play a level, or pick one from a menu
//	tidepool simulate <level> <moves> - Replay a move string headlessly
//	tidepool runs <level>          - Show the best recorded runs of a level
//	tidepool serve                 - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.tidepool/config.yaml)
//	--db <path>         - Run database (default: ~/.tidepool/runs.db)
//	--levels <dir>      - Level directory (default: built-in levels)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tidepool/internal/config"
	"github.com/vovakirdan/tidepool/internal/content"
	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/levels"
	"github.com/vovakirdan/tidepool/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLevels   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tidepool",
	Short: "Tidepool - a turn-based tile puzzle game",
	Long: `Tidepool is a turn-based puzzle game played on a tile grid. Push crates
into water, press plates to open doors, raise bridges and ride teleporters
to reach every goal.

Available commands:
  list       - Show all levels
  templates  - Show the entity templates levels are built from
  play       - Play a level, or pick one interactively
  simulate   - Replay a move string without a terminal UI
  runs       - View the best runs of a level
  serve      - Start SSH server for remote play

Examples:
  tidepool list
  tidepool play 02-moat
  tidepool simulate 04-portal RRU
  tidepool serve --ssh :2222
  tidepool runs 02-moat`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLevels, "levels", "", "Level directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

// deps holds what every command builds from the configuration.
type deps struct {
	cfg     config.Config
	runtime core.RuntimeConfig
	logger  *log.Logger
	catalog *content.Catalog
	loader  *levels.Loader
}

// setup loads the configuration, applies flag overrides and opens content.
func setup() (*deps, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDBPath != "" {
		cfg.Paths.Database = flagDBPath
	}
	if flagLevels != "" {
		cfg.Paths.Levels = flagLevels
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := cfg.LogLevel()
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tidepool",
		Level:           level,
	})

	catalog, err := content.Load(config.ExpandHome(cfg.Paths.Templates))
	if err != nil {
		return nil, err
	}

	var loader *levels.Loader
	if cfg.Paths.Levels == "" {
		loader = levels.Builtin()
	} else {
		loader = levels.NewLoader(config.ExpandHome(cfg.Paths.Levels))
	}
	runtime := core.DefaultConfig()
	runtime.RoomW, runtime.RoomH = cfg.Rooms.Width, cfg.Rooms.Height
	loader.SetDefaultRoomSize(runtime.RoomSize())

	return &deps{cfg: cfg, runtime: runtime, logger: logger, catalog: catalog, loader: loader}, nil
}

// openStore opens the run database. Play continues without it.
func (d *deps) openStore() *storage.Store {
	store, err := storage.Open(d.cfg.Paths.Database)
	if err != nil {
		d.logger.Warn("could not open run database", "path", d.cfg.Paths.Database, "error", err)
		return nil
	}
	return store
}

// fail prints err and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

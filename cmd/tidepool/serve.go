package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tidepool/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tidepool SSH server",
	Long: `Start an SSH server that allows users to connect and play levels.

Each SSH connection gets its own session with the level picker.
Runs are stored per-server under the SSH user name.

Host key handling:
  - If --host-key (or serve.host_key) is set, uses that key file
  - Otherwise, auto-generates a key at ~/.tidepool/host_key

Examples:
  tidepool serve                           # Listen on :23235 with auto-generated key
  tidepool serve --ssh :2222               # Listen on port 2222
  tidepool serve --host-key ./my_host_key  # Use specific host key
  tidepool serve --db ./runs.db            # Use specific database

Users can connect with:
  ssh localhost -p 23235`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (overrides config)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) {
	d, err := setup()
	if err != nil {
		fail("%v", err)
	}
	if flagSSHAddr != "" {
		d.cfg.Serve.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		d.cfg.Serve.HostKey = flagHostKey
	}
	if flagIdleTimeout > 0 {
		d.cfg.Serve.IdleTimeoutMinutes = flagIdleTimeout
	}

	store := d.openStore()
	if store != nil {
		defer store.Close()
	}

	cfg := tui.SSHServerConfigFrom(d.cfg.Serve)
	server, err := tui.NewSSHServer(cfg, tui.Env{
		Loader:  d.loader,
		Catalog: d.catalog,
		Store:   store,
		Logger:  d.logger.WithPrefix("tidepool-ssh"),
		Config:  d.runtime,
	})
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting tidepool SSH server on %s\n", cfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fail("server: %v", err)
	}
}

package config

import (
	_ "embed"
)

//go:embed defaults/tidepool.yaml
var defaultConfigYAML []byte

// DefaultYAML returns the embedded default configuration source.
func DefaultYAML() []byte {
	return defaultConfigYAML
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Rooms: RoomsConfig{
			Width:  10,
			Height: 10,
		},
		Paths: PathsConfig{
			Database: "~/.tidepool/runs.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Play: PlayConfig{
			DebounceMS: 100,
		},
		Serve: ServeConfig{
			Address:            ":23235",
			IdleTimeoutMinutes: 30,
		},
	}
}

// Package config provides YAML-based configuration loading for tidepool.
package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Config is the full tidepool configuration.
type Config struct {
	Rooms RoomsConfig `yaml:"rooms"`
	Paths PathsConfig `yaml:"paths"`
	Log   LogConfig   `yaml:"log"`
	Play  PlayConfig  `yaml:"play"`
	Serve ServeConfig `yaml:"serve"`
}

// RoomsConfig is the room size used for levels that omit room_size.
type RoomsConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PathsConfig locates content on disk. Empty paths fall back to built-ins.
type PathsConfig struct {
	Levels    string `yaml:"levels"`
	Templates string `yaml:"templates"`
	Database  string `yaml:"database"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// PlayConfig controls interactive play.
type PlayConfig struct {
	Watch      bool `yaml:"watch"`       // Reload the level when its files change
	DebounceMS int  `yaml:"debounce_ms"` // Quiet period before a reload fires
}

// Debounce returns the reload debounce as a duration.
func (p PlayConfig) Debounce() time.Duration {
	return time.Duration(p.DebounceMS) * time.Millisecond
}

// ServeConfig controls the SSH server.
type ServeConfig struct {
	Address            string `yaml:"address"`
	HostKey            string `yaml:"host_key"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// IdleTimeout returns the idle timeout as a duration.
func (s ServeConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutMinutes) * time.Minute
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (log.Level, error) {
	return log.ParseLevel(c.Log.Level)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Rooms.Width <= 0 || c.Rooms.Height <= 0 {
		return fmt.Errorf("rooms: size must be positive, got %dx%d", c.Rooms.Width, c.Rooms.Height)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Play.DebounceMS < 0 {
		return fmt.Errorf("play: debounce_ms must not be negative")
	}
	if c.Serve.IdleTimeoutMinutes < 0 {
		return fmt.Errorf("serve: idle_timeout_minutes must not be negative")
	}
	return nil
}

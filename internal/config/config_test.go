package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchCode(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal(DefaultYAML(), &cfg))
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadCustomPathOverlaysDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rooms:\n  width: 6\nlog:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Rooms.Width)
	assert.Equal(t, 10, cfg.Rooms.Height, "untouched keys keep defaults")
	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rooms: [\n"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("log:\n  level: loud\n"), 0o644))
	_, err = Load(invalid)
	assert.Error(t, err)
}

func TestLoadUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".tidepool"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".tidepool", "config.yaml"),
		[]byte("play:\n  watch: true\n  debounce_ms: 250\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Play.Watch)
	assert.Equal(t, 250*time.Millisecond, cfg.Play.Debounce())
	assert.Equal(t, 30*time.Minute, cfg.Serve.IdleTimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Rooms.Width = 0 }},
		{"negative height", func(c *Config) { c.Rooms.Height = -2 }},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"negative debounce", func(c *Config) { c.Play.DebounceMS = -1 }},
		{"negative idle", func(c *Config) { c.Serve.IdleTimeoutMinutes = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".tidepool", "runs.db"), ExpandHome("~/.tidepool/runs.db"))
	assert.Equal(t, "/tmp/x.db", ExpandHome("/tmp/x.db"))
	assert.Equal(t, "", ExpandHome(""))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.ListenAddr)
	assert.Equal(t, 3*time.Minute, cfg.SessionDuration)
	assert.Equal(t, 30*time.Second, cfg.SparkExtension)
	assert.Equal(t, 3, cfg.MaxSparks)
	assert.Equal(t, 12*time.Second, cfg.ReactionWindow)
	assert.Equal(t, 500, cfg.MessageMaxLen)
	assert.Equal(t, 20, cfg.IdentifierMaxLen)
	assert.Equal(t, 50, cfg.BlockListMax)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EMBER_LISTEN_ADDR", ":9000")
	t.Setenv("EMBER_SESSION_DURATION", "90s")
	t.Setenv("EMBER_MAX_SPARKS", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 90*time.Second, cfg.SessionDuration)
	assert.Equal(t, 5, cfg.MaxSparks)
}

func TestLoadTomlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ember.toml")
	content := `
listen_addr = ":4000"
reaction_window = "5s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.ReactionWindow)
	// Everything else keeps its default.
	assert.Equal(t, 3*time.Minute, cfg.SessionDuration)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen_addr", func(c *Config) { c.ListenAddr = "" }},
		{"zero session_duration", func(c *Config) { c.SessionDuration = 0 }},
		{"negative spark_extension", func(c *Config) { c.SparkExtension = -time.Second }},
		{"zero reaction_window", func(c *Config) { c.ReactionWindow = 0 }},
		{"negative max_sparks", func(c *Config) { c.MaxSparks = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.Error(t, Validate(cfg))
		})
	}
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the server configuration. Defaults reproduce the documented
// protocol constants; tests shrink the durations.
type Config struct {
	ListenAddr string `koanf:"listen_addr"`

	SessionDuration time.Duration `koanf:"session_duration"`
	SparkExtension  time.Duration `koanf:"spark_extension"`
	MaxSparks       int           `koanf:"max_sparks"`
	ReactionWindow  time.Duration `koanf:"reaction_window"`

	MessageMaxLen    int `koanf:"message_max_len"`
	IdentifierMaxLen int `koanf:"identifier_max_len"`
	BlockListMax     int `koanf:"block_list_max"`

	SendBuffer int `koanf:"send_buffer"`
}

// Load loads the configuration: built-in defaults, then an optional TOML
// file, then EMBER_-prefixed environment variables. A .env file is read
// first if present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	var k = koanf.New(".")

	k.Load(confmap.Provider(map[string]interface{}{
		"listen_addr":        ":3001",
		"session_duration":   "3m",
		"spark_extension":    "30s",
		"max_sparks":         3,
		"reaction_window":    "12s",
		"message_max_len":    500,
		"identifier_max_len": 20,
		"block_list_max":     50,
		"send_buffer":        32,
	}, "."), nil)

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else if _, err := os.Stat("./ember.toml"); err == nil {
		if err := k.Load(file.Provider("./ember.toml"), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	}

	k.Load(env.Provider("EMBER_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "EMBER_"))
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects configurations the engine cannot run with.
func Validate(config *Config) error {
	if config.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if config.SessionDuration <= 0 {
		return fmt.Errorf("session_duration must be positive")
	}
	if config.SparkExtension <= 0 {
		return fmt.Errorf("spark_extension must be positive")
	}
	if config.ReactionWindow <= 0 {
		return fmt.Errorf("reaction_window must be positive")
	}
	if config.MaxSparks < 0 {
		return fmt.Errorf("max_sparks must not be negative")
	}
	return nil
}

// Default returns the built-in configuration, used by tests.
func Default() *Config {
	return &Config{
		ListenAddr:       ":3001",
		SessionDuration:  3 * time.Minute,
		SparkExtension:   30 * time.Second,
		MaxSparks:        3,
		ReactionWindow:   12 * time.Second,
		MessageMaxLen:    500,
		IdentifierMaxLen: 20,
		BlockListMax:     50,
		SendBuffer:       32,
	}
}

// Package daemon manages the Veloce daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API         APIConfig         `toml:"api"`
	Celebration CelebrationConfig `toml:"celebration"`
	Telemetry   TelemetryConfig   `toml:"telemetry"`
	Logging     LoggingConfig     `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// CelebrationConfig tunes the celebration dispatcher.
type CelebrationConfig struct {
	AnchorX float64 `toml:"anchor_x"`
	AnchorY float64 `toml:"anchor_y"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := veloceHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        7411,
			CORSOrigins: []string{"*"},
		},
		Celebration: CelebrationConfig{
			// Matches the default anchor used when a completion carries
			// no position of its own.
			AnchorX: 195,
			AnchorY: 422,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "veloce.log"),
		},
	}
}

// LoadConfig reads config from ~/.veloce/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(veloceHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.veloce/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(veloceHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// veloceHome returns the Veloce data directory.
func veloceHome() string {
	if env := os.Getenv("VELOCE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".veloce")
}

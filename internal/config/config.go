// Package config handles objtool configuration loading and management.
package config

import "time"

// Config holds all objtool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Model   ModelConfig   `yaml:"model" toml:"model"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// ModelConfig holds settings for reading and resolving models.
type ModelConfig struct {
	Encoding string `yaml:"encoding" toml:"encoding"` // Name encoding of .obj/.mtl files
	// RegisterMissingMaterials binds a placeholder material to every name the
	// model references but no material library defines. When false such
	// models fail to resolve.
	RegisterMissingMaterials bool `yaml:"register_missing_materials" toml:"register_missing_materials"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Model: ModelConfig{
			Encoding:                 "utf-8",
			RegisterMissingMaterials: true,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

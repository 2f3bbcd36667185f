package redpiler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml"
)

// UserConfig holds the tunable parameters persisted to redpiler.toml.
// The zero value is usable; sensible defaults are applied by
// WithDefaults.
type UserConfig struct {
	// Optimize enables the optimization passes by default.
	Optimize bool `toml:"optimize"`
	// IOOnly restricts world writes to visible inputs and outputs.
	IOOnly bool `toml:"io_only"`
	// UpdateAfterReset triggers block updates when final states are
	// written back on reset.
	UpdateAfterReset bool `toml:"update_after_reset"`
	// RTPS is the redstone tick rate of Run. 0 means unlimited.
	RTPS int `toml:"rtps"`
	// WorldSendRate bounds world writes per second.
	WorldSendRate int `toml:"world_send_rate"`
	// AutoCompile recompiles automatically after a forced reset.
	AutoCompile bool `toml:"auto_compile"`
	// MaxNodes caps the size of a single compilation.
	MaxNodes int `toml:"max_nodes"`
}

// WithDefaults fills unset fields with their defaults.
func (c UserConfig) WithDefaults() UserConfig {
	if c.RTPS < 0 {
		c.RTPS = 0
	}
	if c.WorldSendRate <= 0 {
		c.WorldSendRate = 60
	}
	if c.MaxNodes <= 0 {
		c.MaxNodes = 1 << 20
	}
	return c
}

// DefaultUserConfig returns the configuration written to fresh
// installations.
func DefaultUserConfig() UserConfig {
	return UserConfig{RTPS: 10, WorldSendRate: 60, AutoCompile: false}.WithDefaults()
}

// LoadConfig reads the configuration file, creating it with defaults if
// it does not exist yet.
func LoadConfig(path string) (UserConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		conf := DefaultUserConfig()
		return conf, SaveConfig(path, conf)
	}
	if err != nil {
		return UserConfig{}, fmt.Errorf("redpiler: read config: %w", err)
	}
	var conf UserConfig
	if err := toml.Unmarshal(data, &conf); err != nil {
		return UserConfig{}, fmt.Errorf("redpiler: decode config: %w", err)
	}
	return conf.WithDefaults(), nil
}

// SaveConfig writes the configuration file.
func SaveConfig(path string, conf UserConfig) error {
	data, err := toml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("redpiler: encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("redpiler: write config: %w", err)
	}
	return nil
}

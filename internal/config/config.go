package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	HTTPAddr  string    `json:"httpAddr" yaml:"httpAddr"`
	DebugAddr string    `json:"debugAddr" yaml:"debugAddr"`
	Log       LogConfig `json:"log" yaml:"log"`
	Limits    Limits    `json:"limits" yaml:"limits"`
}

// LogConfig selects the logger's level and format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Limits captures the memory budget and write pacing for the log.
// Zero values mean unlimited.
type Limits struct {
	MaxChunkBytes        int64 `json:"maxChunkBytes" yaml:"maxChunkBytes"`
	MaxTotalBytes        int64 `json:"maxTotalBytes" yaml:"maxTotalBytes"`
	WriteRateBytesPerSec int64 `json:"writeRateBytesPerSec" yaml:"writeRateBytesPerSec"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Limits: Limits{
			MaxChunkBytes: 16 << 20,
			MaxTotalBytes: 256 << 20,
		},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse yaml config %s", path)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse json config %s", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the runtime cannot honor.
func (c Config) Validate() error {
	if c.Limits.MaxChunkBytes < 0 || c.Limits.MaxTotalBytes < 0 || c.Limits.WriteRateBytesPerSec < 0 {
		return errors.New("limits must be non-negative")
	}
	if c.Limits.MaxChunkBytes > 0 && c.Limits.MaxTotalBytes > 0 &&
		c.Limits.MaxChunkBytes > c.Limits.MaxTotalBytes {
		return errors.New("maxChunkBytes exceeds maxTotalBytes")
	}
	return nil
}

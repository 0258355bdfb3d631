package config

import (
	"os"

	"github.com/spf13/viper"

	"codeberg.org/varmo/hwstress/internal/errors"
)

// DefaultLogLevel applies when neither file, env, nor flags set one.
const DefaultLogLevel = "info"

// Config is the application-level configuration shared by all subcommands.
// Per-run parameters (duration, ceilings) layer on top of these defaults
// from subcommand flags.
type Config struct {
	Interval      float64 `mapstructure:"interval"`       // seconds between monitor/heatmap ticks
	CPUCeiling    float64 `mapstructure:"cpu_ceiling"`    // benchmark CPU safety ceiling, percent
	MemoryCeiling float64 `mapstructure:"memory_ceiling"` // benchmark memory safety ceiling, percent
	Persist       bool    `mapstructure:"persist"`        // store finished runs in the run database
	Database      string  `mapstructure:"database"`       // run database path
	LogLevel      string  `mapstructure:"log_level"`
	Debug         bool    `mapstructure:"debug"`
	Verbose       bool    `mapstructure:"verbose"`
}

// Load reads configuration from the file named by HWSTRESS_CONFIG, falling
// back to hwstress.toml in /etc and the working directory, then applies
// HWSTRESS_* environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("interval", 1.0)
	v.SetDefault("cpu_ceiling", 80.0)
	v.SetDefault("memory_ceiling", 80.0)
	v.SetDefault("persist", false)
	v.SetDefault("database", "")
	v.SetDefault("log_level", DefaultLogLevel)

	if path := os.Getenv("HWSTRESS_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hwstress")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HWSTRESS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside an engine.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.CPUCeiling <= 0 || c.CPUCeiling > 100 {
		return errFactory.WithData(errors.ErrInvalidCeiling, c.CPUCeiling)
	}
	if c.MemoryCeiling <= 0 || c.MemoryCeiling > 100 {
		return errFactory.WithData(errors.ErrInvalidCeiling, c.MemoryCeiling)
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

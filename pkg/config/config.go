// Package config resolves the overlap CLI settings from flags, OVERLAP_*
// environment variables and an optional YAML file, in that order of
// precedence.
package config

import (
	"log/slog"
	"strings"

	"github.com/anrid/overlap/pkg/interference"
	"github.com/anrid/overlap/pkg/simtime"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "OVERLAP"
	DefaultFormat = "table"
)

// Config holds the settings of one overlap run.
type Config struct {
	Receptions  string `mapstructure:"receptions"`
	Windows     string `mapstructure:"windows"`
	PurgeBefore string `mapstructure:"purge-before"`
	Format      string `mapstructure:"format"`
	Check       bool   `mapstructure:"check"`
	Verbose     bool   `mapstructure:"verbose"`
}

// Load reads the config file at path (if not empty), then overlays
// environment variables and any flag in flags that was set explicitly.
func Load(flags *pflag.FlagSet, path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("format", DefaultFormat)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "could not bind flags")
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "could not read config file: %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "could not decode config")
	}

	return &cfg, cfg.Validate()
}

// Validate reports the first missing or malformed setting.
func (c *Config) Validate() error {
	if c.Receptions == "" {
		return errors.New("receptions file or URL is required")
	}
	if c.Windows == "" {
		return errors.New("query windows file or URL is required")
	}
	if c.PurgeBefore != "" {
		if _, err := simtime.Parse(c.PurgeBefore); err != nil {
			return errors.Wrap(err, "invalid purge-before")
		}
	}
	switch strings.ToLower(c.Format) {
	case "table", "csv":
	default:
		return errors.Errorf("unknown output format: %s", c.Format)
	}
	return nil
}

// Params turns the config into interference.Run parameters.
func (c *Config) Params(logger *slog.Logger) (interference.Params, error) {
	p := interference.Params{
		ReceptionsFileOrURL: c.Receptions,
		WindowsFileOrURL:    c.Windows,
		Check:               c.Check,
		Logger:              logger,
	}

	if c.PurgeBefore != "" {
		t, err := simtime.Parse(c.PurgeBefore)
		if err != nil {
			return p, errors.Wrap(err, "invalid purge-before")
		}
		p.PurgeBefore = &t
	}

	return p, nil
}

// LogLevel is debug when verbose output was requested, info otherwise.
func (c *Config) LogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

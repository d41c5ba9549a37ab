// Package config loads and validates event-ratings configuration via Viper.
//
// Values come from, in increasing precedence: built-in defaults, an optional YAML
// config file, EVENT_RATINGS_* environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. EVENT_RATINGS_WORKERS
const EnvPrefix = "EVENT_RATINGS"

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config captures every knob of a ratings run
type Config struct {
	URLsFile        string        `mapstructure:"urls"`
	Workers         int           `mapstructure:"workers"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Retries         int           `mapstructure:"retries"`
	RetryWait       time.Duration `mapstructure:"retry-wait"`
	UserAgent       string        `mapstructure:"user-agent"`
	TitleSelector   string        `mapstructure:"title-selector"`
	RatingSelector  string        `mapstructure:"rating-selector"`
	Format          string        `mapstructure:"format"`
	Verbose         bool          `mapstructure:"verbose"`
	Progress        bool          `mapstructure:"progress"`
	MetricsTextfile string        `mapstructure:"metrics-textfile"`
	LogLevel        string        `mapstructure:"log-level"`
}

// SetDefaults registers the reference policy on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("urls", "urls.txt")
	v.SetDefault("workers", 4)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("retries", 0)
	v.SetDefault("retry-wait", 250*time.Millisecond)
	v.SetDefault("user-agent", "event-ratings-cli/1.0 (github.com/pfrederiksen/event-ratings)")
	v.SetDefault("title-selector", "h1")
	v.SetDefault("rating-selector", ".en_grade_average")
	v.SetDefault("format", FormatTable)
	v.SetDefault("verbose", false)
	v.SetDefault("progress", false)
	v.SetDefault("metrics-textfile", "")
	v.SetDefault("log-level", "info")
}

// Load builds a Config from defaults, the optional file at path, the environment and flags.
// flags may be nil.
func Load(v *viper.Viper, path string, flags *pflag.FlagSet) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate enforces required values and reasonable limits
func (c Config) Validate() error {
	if strings.TrimSpace(c.URLsFile) == "" {
		return fmt.Errorf("urls must not be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0")
	}
	if c.RetryWait < 0 {
		return fmt.Errorf("retry-wait must be >= 0")
	}
	if strings.TrimSpace(c.TitleSelector) == "" {
		return fmt.Errorf("title-selector must not be empty")
	}
	if strings.TrimSpace(c.RatingSelector) == "" {
		return fmt.Errorf("rating-selector must not be empty")
	}
	if c.Format != FormatTable && c.Format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'table' or 'json')", c.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.LogLevel)
	}
	return nil
}

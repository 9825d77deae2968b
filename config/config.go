// Package config loads and validates the service configuration from
// defaults, environment variables, and command-line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Limiter LimiterConfig `mapstructure:"limiter"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LimiterConfig seeds the bucket's initial policy.
type LimiterConfig struct {
	Capacity   float64 `mapstructure:"capacity" validate:"gt=0"`
	RefillRate float64 `mapstructure:"refill_rate" validate:"gte=0"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     int    `mapstructure:"read_timeout" validate:"gt=0"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout" validate:"gt=0"`    // seconds
	IdleTimeout     int    `mapstructure:"idle_timeout" validate:"gt=0"`     // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" validate:"gt=0"` // seconds
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// flagBindings maps viper keys to the command-line flags that override them.
var flagBindings = map[string]string{
	"limiter.capacity":    "capacity",
	"limiter.refill_rate": "refill_rate",
	"server.port":         "port",
	"logging.level":       "log-level",
}

// Load builds the configuration. Flags may be nil when no command line is
// involved (tests, embedding).
func Load(flags *pflag.FlagSet) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FLOODGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("limiter.capacity", 5.0)
	v.SetDefault("limiter.refill_rate", 0.5)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.shutdown_timeout", 30)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks the configuration against its field constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

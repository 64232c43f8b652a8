package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config file and from
// environment variables with the VIGIL_ prefix. Environment variables
// take precedence over file values, and both override the built-in
// defaults. Returns a validated Config or an error describing the
// first problem found.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file: ./vigil.yaml or /etc/vigil/vigil.yaml.
	v.SetConfigName("vigil")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/vigil")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables: VIGIL_PIPELINE_QUEUE_CAPACITY etc.
	v.SetEnvPrefix("VIGIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against the struct validation rules, including
// the cross-field constraint that the escalation thresholds are
// strictly increasing.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Default returns the built-in configuration, matching the original
// deployment values: capacity-10 queue, 1s/500ms/2s/3s task cadence,
// 5s watchdog deadline, escalation thresholds 10/20/30.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults are statically known; unmarshal cannot fail on them.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("pipeline.queue_capacity", 10)
	v.SetDefault("pipeline.producer_interval", "1s")
	v.SetDefault("pipeline.consumer_interval", "500ms")
	v.SetDefault("pipeline.supervisor_interval", "2s")
	v.SetDefault("pipeline.reporter_interval", "3s")

	v.SetDefault("consumer.light_threshold", 10)
	v.SetDefault("consumer.moderate_threshold", 20)
	v.SetDefault("consumer.aggressive_threshold", 30)
	v.SetDefault("consumer.reset_on_flush", false)

	v.SetDefault("watchdog.deadline", "5s")

	v.SetDefault("database.url", "")

	v.SetDefault("restart.initial_backoff", "100ms")
	v.SetDefault("restart.max_backoff", "10s")
}

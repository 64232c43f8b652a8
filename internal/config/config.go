package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Consumer ConsumerConfig `mapstructure:"consumer" validate:"required"`
	Watchdog WatchdogConfig `mapstructure:"watchdog" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Restart  RestartConfig  `mapstructure:"restart"  validate:"required"`
}

// ServerConfig contains logging and status-API settings.
type ServerConfig struct {
	// Port for the status HTTP listener. Zero disables the listener.
	Port     int    `mapstructure:"port"      validate:"gte=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// PipelineConfig sizes the data path and sets the tick cadence of each
// task. The two demo shapes from the original deployment are reachable
// here: queue capacity 10 (drops rare) and capacity 1 (drops routine).
type PipelineConfig struct {
	QueueCapacity      int           `mapstructure:"queue_capacity"      validate:"required,gt=0"`
	ProducerInterval   time.Duration `mapstructure:"producer_interval"   validate:"required,gt=0"`
	ConsumerInterval   time.Duration `mapstructure:"consumer_interval"   validate:"required,gt=0"`
	SupervisorInterval time.Duration `mapstructure:"supervisor_interval" validate:"required,gt=0"`
	ReporterInterval   time.Duration `mapstructure:"reporter_interval"   validate:"required,gt=0"`
}

// ConsumerConfig sets the escalation thresholds of the consumer's
// failure state machine. Thresholds are exact-match on the consecutive
// failure count and must be strictly increasing.
type ConsumerConfig struct {
	LightThreshold      int `mapstructure:"light_threshold"      validate:"required,gt=0"`
	ModerateThreshold   int `mapstructure:"moderate_threshold"   validate:"required,gtfield=LightThreshold"`
	AggressiveThreshold int `mapstructure:"aggressive_threshold" validate:"required,gtfield=ModerateThreshold"`

	// ResetOnFlush clears the failure counter after the moderate-tier
	// flush, making the light and moderate tiers repeat in cycles and
	// the aggressive tier unreachable. When false (the default) the
	// tiers fire in strict sequence and the aggressive tier restarts
	// the process at the AggressiveThreshold-th consecutive failure.
	ResetOnFlush bool `mapstructure:"reset_on_flush"`
}

// WatchdogConfig sets the liveness deadline shared by all tasks.
type WatchdogConfig struct {
	Deadline time.Duration `mapstructure:"deadline" validate:"required,gt=0"`
}

// DatabaseConfig contains the optional recovery-journal database
// settings. An empty URL disables the journal.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// RestartConfig bounds the pause between in-daemon restarts after an
// aggressive escalation or a watchdog trip.
type RestartConfig struct {
	InitialBackoff time.Duration `mapstructure:"initial_backoff" validate:"required,gt=0"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"     validate:"required,gtefield=InitialBackoff"`
}

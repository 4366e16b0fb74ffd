// Package config loads stepwise settings from defaults, an optional YAML
// file and STEPWISE_* environment variables.
package config

import (
	"time"
)

// Defaults.
const (
	DefaultSpeedMS      = 300
	DefaultPollInterval = 100 * time.Millisecond
	DefaultChallenge    = 300 * time.Second
	DefaultAddr         = ":8080"
	DefaultBackend      = "memory"
	DefaultRedisAddr    = "localhost:6379"
	DefaultPrefix       = "stepwise:preset:"
	DefaultPresetDir    = ".stepwise/presets"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultSeed         = 42
)

// DefaultSizes are the input sizes of a comparison.
var DefaultSizes = []int{10, 50, 100, 500, 1000}

// Config is the top-level configuration.
type Config struct {
	Runner    RunnerConfig    `mapstructure:"runner"`
	Server    ServerConfig    `mapstructure:"server"`
	Presets   PresetsConfig   `mapstructure:"presets"`
	Log       LogConfig       `mapstructure:"log"`
	Compare   CompareConfig   `mapstructure:"compare"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// RunnerConfig holds pacing settings.
type RunnerConfig struct {
	SpeedMS      int           `mapstructure:"speed_ms" validate:"min=100,max=2000"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	Challenge    time.Duration `mapstructure:"challenge" validate:"gt=0"`
	Mode         string        `mapstructure:"mode" validate:"omitempty,oneof=learning quick challenge"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// PresetsConfig selects and configures the preset store.
type PresetsConfig struct {
	Backend   string        `mapstructure:"backend" validate:"oneof=memory redis file"`
	RedisAddr string        `mapstructure:"redis_addr" validate:"required_if=Backend redis"`
	Password  string        `mapstructure:"redis_password"`
	DB        int           `mapstructure:"redis_db" validate:"gte=0"`
	Prefix    string        `mapstructure:"prefix"`
	TTL       time.Duration `mapstructure:"ttl" validate:"gte=0"`
	Dir       string        `mapstructure:"dir" validate:"required_if=Backend file"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// CompareConfig holds batch comparison defaults.
type CompareConfig struct {
	Sizes []int  `mapstructure:"sizes" validate:"min=1,dive,min=1,max=100000"`
	Seed  uint64 `mapstructure:"seed"`
}

// TelemetryConfig toggles metrics and tracing endpoints.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

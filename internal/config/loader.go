package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = "stepwise"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for stepwise settings.
const envPrefix = "STEPWISE"

// Load reads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise stepwise.yaml is searched in CWD and $HOME.
// A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the struct tags of every section.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("runner.speed_ms", DefaultSpeedMS)
	v.SetDefault("runner.poll_interval", DefaultPollInterval)
	v.SetDefault("runner.challenge", DefaultChallenge)
	v.SetDefault("runner.mode", "learning")

	v.SetDefault("server.addr", DefaultAddr)

	v.SetDefault("presets.backend", DefaultBackend)
	v.SetDefault("presets.redis_addr", DefaultRedisAddr)
	v.SetDefault("presets.redis_password", "")
	v.SetDefault("presets.redis_db", 0)
	v.SetDefault("presets.prefix", DefaultPrefix)
	v.SetDefault("presets.ttl", 0)
	v.SetDefault("presets.dir", DefaultPresetDir)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("compare.sizes", DefaultSizes)
	v.SetDefault("compare.seed", DefaultSeed)

	v.SetDefault("telemetry.enabled", false)
}

// Package config loads service configuration from file and environment.
// Everything the orchestrators need is carried in this struct and injected at
// construction; there are no ambient configuration singletons.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level service configuration.
type Config struct {
	Addr string `mapstructure:"addr"`

	Supabase SupabaseConfig `mapstructure:"supabase"`
	AI       AIConfig       `mapstructure:"ai"`
	Fanout   FanoutConfig   `mapstructure:"fanout"`
}

// SupabaseConfig locates the hosted database/auth/storage service.
type SupabaseConfig struct {
	URL              string `mapstructure:"url"`
	Key              string `mapstructure:"key"`
	Password         string `mapstructure:"password"`
	ConnectionString string `mapstructure:"connection_string"`
	MaxOpenConns     int    `mapstructure:"max_open_conns"`
	MaxIdleConns     int    `mapstructure:"max_idle_conns"`
}

// AIConfig locates the serverless extraction/translation endpoints.
type AIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FanoutConfig tunes the per-language translation fan-out.
type FanoutConfig struct {
	WorkerCount int `mapstructure:"worker_count"`
	RetryCount  int `mapstructure:"retry_count"`
}

// Load reads configuration from the named file (optional) and from
// PODCASTSTUDIO_* environment variables, applying defaults for tuning knobs.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("ai.timeout", 120*time.Second)
	v.SetDefault("fanout.worker_count", 4)
	v.SetDefault("fanout.retry_count", 1)

	v.SetEnvPrefix("PODCASTSTUDIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for the settings the service cannot run without.
func (c *Config) Validate() error {
	if c.AI.BaseURL == "" {
		return fmt.Errorf("ai.base_url is required")
	}
	if c.Supabase.URL == "" && c.Supabase.ConnectionString == "" {
		return fmt.Errorf("supabase.url or supabase.connection_string is required")
	}
	return nil
}

// Package config loads the gateway's YAML configuration and watches it
// for changes so poller tunables can be reloaded without a restart.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/technosupport/ts-dvr-gateway/internal/poller"
)

type Config struct {
	HTTP struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"http"`

	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`

	NATS struct {
		URL             string `yaml:"url"`
		Subject         string `yaml:"subject"`
		PublishRetryMax int    `yaml:"publish_retry_max"`
	} `yaml:"nats"`

	Auth struct {
		SigningKey       string `yaml:"signing_key"`
		LoginRate        int    `yaml:"login_rate"`
		LoginWindowSecs  int    `yaml:"login_window_secs"`
		RateLimitSalt    string `yaml:"rate_limit_salt"`
	} `yaml:"auth"`

	Events struct {
		Enabled               bool `yaml:"enabled"`
		PollIntervalMs        int  `yaml:"poll_interval_ms"`
		MaxInflightServers    int  `yaml:"max_inflight_servers"`
		MaxEventsPerPoll      int  `yaml:"max_events_per_poll"`
		TimeBudgetMs          int  `yaml:"time_budget_ms"`
		BackoffMs             int  `yaml:"backoff_ms"`
		DedupTTLSeconds       int  `yaml:"dedup_ttl_seconds"`
		DedupMaxKeys          int  `yaml:"dedup_max_keys"`
		CameraCacheTTLSeconds int  `yaml:"camera_cache_ttl_seconds"`
	} `yaml:"events"`
}

// Load reads the YAML file and applies environment overrides. A missing
// file yields the defaults so a dev setup can run on env vars alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	raw, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("JWT_SIGNING_KEY"); v != "" {
		c.Auth.SigningKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "dvr.events"
	}
	if c.Auth.SigningKey == "" {
		c.Auth.SigningKey = "dev-secret-do-not-use-in-prod"
	}
	if c.Auth.LoginRate == 0 {
		c.Auth.LoginRate = 10
	}
	if c.Auth.LoginWindowSecs == 0 {
		c.Auth.LoginWindowSecs = 60
	}
	if c.Events.DedupTTLSeconds == 0 {
		c.Events.DedupTTLSeconds = 300
	}
	if c.Events.DedupMaxKeys == 0 {
		c.Events.DedupMaxKeys = 8192
	}
	if c.Events.CameraCacheTTLSeconds == 0 {
		c.Events.CameraCacheTTLSeconds = 60
	}
}

// ConnString builds the Postgres DSN.
func (c *Config) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name, c.Database.SSLMode)
}

// PollerConfig maps the events block onto the poller's tunables.
func (c *Config) PollerConfig() poller.Config {
	return poller.Config{
		Enabled:          c.Events.Enabled,
		PollInterval:     time.Duration(c.Events.PollIntervalMs) * time.Millisecond,
		MaxInflight:      c.Events.MaxInflightServers,
		MaxEventsPerPoll: c.Events.MaxEventsPerPoll,
		TimeBudget:       time.Duration(c.Events.TimeBudgetMs) * time.Millisecond,
		Backoff:          time.Duration(c.Events.BackoffMs) * time.Millisecond,
	}
}

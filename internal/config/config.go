package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup BackupConfig `yaml:"backup"`

	Redis struct {
		Address                 string `yaml:"address"`
		Password                string `yaml:"password"`
		DB                      int    `yaml:"db"`
		TimezoneCacheTTLSeconds int    `yaml:"timezone_cache_ttl_seconds"`
	} `yaml:"redis"`

	Scheduler struct {
		CheckIntervalSeconds int `yaml:"check_interval_seconds"`
		EchoOffsetMinutes    int `yaml:"echo_offset_minutes"`
		EchoExpirationHours  int `yaml:"echo_expiration_hours"`
	} `yaml:"scheduler"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/napominator.db"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// CheckInterval is the poll cadence of the due-reminder matcher. It must
// stay at or below a minute so a due minute is never skipped.
func (c *Config) CheckInterval() time.Duration {
	if c.Scheduler.CheckIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Scheduler.CheckIntervalSeconds) * time.Second
}

// EchoOffset is the delay between escalation notices.
func (c *Config) EchoOffset() time.Duration {
	if c.Scheduler.EchoOffsetMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Scheduler.EchoOffsetMinutes) * time.Minute
}

// EchoExpiration is the escalation window measured from the first fire.
func (c *Config) EchoExpiration() time.Duration {
	if c.Scheduler.EchoExpirationHours <= 0 {
		return time.Hour
	}
	return time.Duration(c.Scheduler.EchoExpirationHours) * time.Hour
}

// TimezoneCacheTTL bounds how long a cached owner timezone stays valid.
func (c *Config) TimezoneCacheTTL() time.Duration {
	if c.Redis.TimezoneCacheTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Redis.TimezoneCacheTTLSeconds) * time.Second
}

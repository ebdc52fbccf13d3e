package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type MailConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	Account             string `yaml:"account"`
	Password            string `yaml:"password"`
	PollIntervalMinutes int    `yaml:"poll_interval_minutes"`
	Timezone            string `yaml:"timezone"`
}

type SMTPConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Account    string `yaml:"account"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MetricsConfig struct {
	Port string `yaml:"port"`
}

type Config struct {
	Mail    MailConfig    `yaml:"mail"`
	SMTP    SMTPConfig    `yaml:"smtp"`
	DB      DBConfig      `yaml:"db"`
	MQ      MQConfig      `yaml:"mq"`
	Redis   RedisConfig   `yaml:"redis"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Load builds the configuration from config.yaml (when present) with
// environment variables taking precedence. A missing file is fine: a pure
// environment deployment is supported. The result is immutable after
// startup; validation failures must abort the process before any loop runs.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		f, err := os.Open(path)
		if err == nil {
			decoder := yaml.NewDecoder(f)
			decodeErr := decoder.Decode(cfg)
			f.Close()
			if decodeErr != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", path, decodeErr)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Mail: MailConfig{
			Port:                993,
			PollIntervalMinutes: 1,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		DB: DBConfig{
			Port: 5432,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Metrics: MetricsConfig{
			Port: ":9090",
		},
	}
}

func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"mail.host", c.Mail.Host},
		{"mail.account", c.Mail.Account},
		{"mail.password", c.Mail.Password},
		{"smtp.host", c.SMTP.Host},
		{"smtp.account", c.SMTP.Account},
		{"db.host", c.DB.Host},
		{"db.user", c.DB.User},
		{"db.name", c.DB.Name},
		{"mq.url", c.MQ.URL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required config key %s", r.key)
		}
	}
	if c.Mail.PollIntervalMinutes <= 0 {
		return fmt.Errorf("mail.poll_interval_minutes must be positive, got %d", c.Mail.PollIntervalMinutes)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid mail.timezone %q: %w", c.Mail.Timezone, err)
	}
	return nil
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Mail.PollIntervalMinutes) * time.Minute
}

// Location resolves the configured time zone, defaulting to the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Mail.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Mail.Timezone)
}

func overrideFromEnv(cfg *Config) {
	setString(&cfg.Mail.Host, "MAIL_HOST")
	setInt(&cfg.Mail.Port, "MAIL_PORT")
	setString(&cfg.Mail.Account, "MAIL_ACCOUNT")
	setString(&cfg.Mail.Password, "MAIL_PASSWORD")
	setInt(&cfg.Mail.PollIntervalMinutes, "MAIL_POLL_INTERVAL_MINUTES")
	setString(&cfg.Mail.Timezone, "MAIL_TIMEZONE")

	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setInt(&cfg.SMTP.Port, "SMTP_PORT")
	setString(&cfg.SMTP.Account, "SMTP_ACCOUNT")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.SenderName, "SMTP_SENDER_NAME")

	setString(&cfg.DB.Host, "DB_HOST")
	setInt(&cfg.DB.Port, "DB_PORT")
	setString(&cfg.DB.User, "DB_USER")
	setString(&cfg.DB.Password, "DB_PASSWORD")
	setString(&cfg.DB.Name, "DB_NAME")

	setString(&cfg.MQ.URL, "MQ_URL")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.Metrics.Port, "METRICS_PORT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

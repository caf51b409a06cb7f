package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Alarm    AlarmConfig    `koanf:"alarm"`
	Ringtone RingtoneConfig `koanf:"ringtone"`
	Push     PushConfig     `koanf:"push"`
}

type ServerConfig struct {
	Port           string `koanf:"port"`
	AllowedOrigins string `koanf:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type AuthConfig struct {
	JWTSecret          string `koanf:"jwt_secret"`
	RefreshSecret      string `koanf:"refresh_secret"`
	AccessTokenMinutes int    `koanf:"access_token_minutes"`
	RefreshTokenDays   int    `koanf:"refresh_token_days"`
	RememberDays       int    `koanf:"remember_days"`
	CookieSecure       bool   `koanf:"cookie_secure"`
}

// AlarmConfig tunes the delivery engine and the background push notifier.
// PollIntervalMs must stay below one minute or due windows can be skipped
// entirely; Load rejects values that break this.
type AlarmConfig struct {
	PollIntervalMs     int    `koanf:"poll_interval_ms"`
	SnoozeMinutes      int    `koanf:"snooze_minutes"`
	NotifierIntervalMs int    `koanf:"notifier_interval_ms"`
	DedupGranularity   string `koanf:"dedup_granularity"`
}

type RingtoneConfig struct {
	Dir            string `koanf:"dir"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
}

type PushConfig struct {
	VAPIDPublicKey  string `koanf:"vapid_public_key"`
	VAPIDPrivateKey string `koanf:"vapid_private_key"`
	Subject         string `koanf:"subject"`
}

// Load builds the configuration from defaults, an optional YAML file and
// VITAL_* environment variables (VITAL_SERVER_PORT overrides server.port).
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("VITAL_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "VITAL_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Alarm.PollIntervalMs <= 0 {
		return fmt.Errorf("alarm.poll_interval_ms must be positive, got %d", c.Alarm.PollIntervalMs)
	}
	if c.Alarm.PollIntervalMs >= 60000 {
		return fmt.Errorf("alarm.poll_interval_ms must be below 60000 to not skip one-minute due windows, got %d", c.Alarm.PollIntervalMs)
	}
	if c.Alarm.NotifierIntervalMs <= 0 {
		return fmt.Errorf("alarm.notifier_interval_ms must be positive, got %d", c.Alarm.NotifierIntervalMs)
	}
	if c.Alarm.NotifierIntervalMs >= 60000 {
		return fmt.Errorf("alarm.notifier_interval_ms must be below 60000 to not skip one-minute due windows, got %d", c.Alarm.NotifierIntervalMs)
	}
	if c.Alarm.SnoozeMinutes <= 0 {
		return fmt.Errorf("alarm.snooze_minutes must be positive, got %d", c.Alarm.SnoozeMinutes)
	}
	if c.Alarm.DedupGranularity != "minute" {
		return fmt.Errorf("alarm.dedup_granularity: only \"minute\" is supported, got %q", c.Alarm.DedupGranularity)
	}
	if c.Ringtone.MaxUploadBytes <= 0 {
		return fmt.Errorf("ringtone.max_upload_bytes must be positive, got %d", c.Ringtone.MaxUploadBytes)
	}
	return nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Alarm.PollIntervalMs) * time.Millisecond
}

func (c *Config) SnoozeDuration() time.Duration {
	return time.Duration(c.Alarm.SnoozeMinutes) * time.Minute
}

func (c *Config) NotifierInterval() time.Duration {
	return time.Duration(c.Alarm.NotifierIntervalMs) * time.Millisecond
}

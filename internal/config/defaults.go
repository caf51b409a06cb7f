package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"server": map[string]interface{}{
			"port":            "3000",
			"allowed_origins": "http://localhost:80,http://localhost:5173",
		},
		"database": map[string]interface{}{
			"path": "./data/vital.db",
		},
		"auth": map[string]interface{}{
			"jwt_secret":           "",
			"refresh_secret":       "",
			"access_token_minutes": 15,
			"refresh_token_days":   7,
			"remember_days":        30,
			"cookie_secure":        true,
		},
		"alarm": map[string]interface{}{
			"poll_interval_ms":     10000, // due-query poll, must stay < 60s
			"snooze_minutes":       5,
			"notifier_interval_ms": 30000, // background push notifier
			"dedup_granularity":    "minute",
		},
		"ringtone": map[string]interface{}{
			"dir":              "./data/user_ringtones",
			"max_upload_bytes": int64(2 * 1024 * 1024),
		},
		"push": map[string]interface{}{
			"vapid_public_key":  "",
			"vapid_private_key": "",
			"subject":           "",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

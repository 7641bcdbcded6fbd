package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// envConfig is a DTO for the environment overlay. Pointer fields distinguish
// "unset" from "zero", so only variables actually present override anything.
type envConfig struct {
	APIBaseURL          *string        `env:"API_BASE_URL"`
	RequestTimeout      *time.Duration `env:"REQUEST_TIMEOUT"`
	RefreshMargin       *time.Duration `env:"REFRESH_MARGIN"`
	ResendCooldown      *time.Duration `env:"RESEND_COOLDOWN"`
	StorePollInterval   *time.Duration `env:"STORE_POLL_INTERVAL"`
	DatabaseDSN         *string        `env:"DATABASE_DSN"`
	AchievementsEnabled *bool          `env:"ACHIEVEMENTS_ENABLED"`
	LogLevel            *string        `env:"LOG_LEVEL"`
}

// parseEnv overlays cfg with ZOOTRAIL_-prefixed environment variables.
// Panics on malformed values (caller should recover if desired).
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: "ZOOTRAIL_"}); err != nil {
		panic(err)
	}

	if ec.APIBaseURL != nil {
		cfg.APIBaseURL = *ec.APIBaseURL
	}
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = *ec.RequestTimeout
	}
	if ec.RefreshMargin != nil {
		cfg.RefreshMargin = *ec.RefreshMargin
	}
	if ec.ResendCooldown != nil {
		cfg.ResendCooldown = *ec.ResendCooldown
	}
	if ec.StorePollInterval != nil {
		cfg.StorePollInterval = *ec.StorePollInterval
	}
	if ec.DatabaseDSN != nil {
		cfg.DatabaseDSN = *ec.DatabaseDSN
	}
	if ec.AchievementsEnabled != nil {
		cfg.AchievementsEnabled = *ec.AchievementsEnabled
	}
	if ec.LogLevel != nil {
		cfg.LogLevel = *ec.LogLevel
	}
}

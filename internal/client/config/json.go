package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/zootrail/zootrail/internal/flagx"
	"github.com/zootrail/zootrail/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds. Pointer fields distinguish "absent" from "zero",
// so a partial file only overrides what it names.
type JsonConfig struct {
	APIBaseURL          *string         `json:"api_base_url"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	RefreshMargin       *timex.Duration `json:"refresh_margin"`
	ResendCooldown      *timex.Duration `json:"resend_cooldown"`
	StorePollInterval   *timex.Duration `json:"store_poll_interval"`
	DatabaseDSN         *string         `json:"database_dsn"`
	AchievementsEnabled *bool           `json:"achievements_enabled"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays cfg with values loaded from a JSON file. The file path
// comes from the -c/-config flags; when neither is given nothing is loaded.
// Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFilePath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.RefreshMargin != nil {
		cfg.RefreshMargin = time.Duration(jc.RefreshMargin.Duration)
	}
	if jc.ResendCooldown != nil {
		cfg.ResendCooldown = time.Duration(jc.ResendCooldown.Duration)
	}
	if jc.StorePollInterval != nil {
		cfg.StorePollInterval = time.Duration(jc.StorePollInterval.Duration)
	}
	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.AchievementsEnabled != nil {
		cfg.AchievementsEnabled = *jc.AchievementsEnabled
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}

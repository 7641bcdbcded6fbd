package config

import "time"

// Config holds runtime settings for the ZooTrail CLI.
//
// Fields:
//   - APIBaseURL: base URL of the backend HTTP API.
//   - RequestTimeout: per-request timeout for API calls.
//   - RefreshMargin: how long before token expiry the session refresh fires.
//   - ResendCooldown: wait imposed after a successful email resend.
//   - StorePollInterval: how often the session store checks for writes made
//     by another process; 0 disables the watcher.
//   - DatabaseDSN: path/DSN of the local sqlite database.
//   - AchievementsEnabled: gates the achievements commands.
//   - LogLevel: debug, info, warn, or error.
type Config struct {
	APIBaseURL          string
	RequestTimeout      time.Duration
	RefreshMargin       time.Duration
	ResendCooldown      time.Duration
	StorePollInterval   time.Duration
	DatabaseDSN         string
	AchievementsEnabled bool
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.RequestTimeout = 10 * time.Second
	c.RefreshMargin = 60 * time.Second
	c.ResendCooldown = 30 * time.Second
	c.StorePollInterval = 2 * time.Second
	c.DatabaseDSN = "zootrail.db"
	c.AchievementsEnabled = false
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

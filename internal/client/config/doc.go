// Package config loads runtime configuration for the ZooTrail CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables with the ZOOTRAIL_ prefix (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string        base URL of the ZooTrail API
//	-d string        path/DSN of the local sqlite database
//	-achievements    enable the achievements commands
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.zootrail.example",
//	  "request_timeout": "10s",
//	  "refresh_margin": "60s",
//	  "resend_cooldown": "30s",
//	  "store_poll_interval": "2s",
//	  "database_dsn": "zootrail.db",
//	  "achievements_enabled": true,
//	  "log_level": "debug"
//	}
package config

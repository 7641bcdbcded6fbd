package config

import (
	"flag"
	"os"

	"github.com/zootrail/zootrail/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string        base URL of the ZooTrail API (default from Config)
//	-d string        path/DSN of the local sqlite database
//	-achievements    enable the achievements commands
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-achievements"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the ZooTrail API")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "path of the local database")
	fs.BoolVar(&cfg.AchievementsEnabled, "achievements", cfg.AchievementsEnabled, "enable achievements commands")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/zootrail/zootrail/internal/buildinfo"
	"github.com/zootrail/zootrail/internal/client/cli"
	"github.com/zootrail/zootrail/internal/client/config"
	"github.com/zootrail/zootrail/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

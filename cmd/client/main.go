package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/evorun/internal/buildinfo"
	"github.com/dmitrijs2005/evorun/internal/client/cli"
	"github.com/dmitrijs2005/evorun/internal/client/config"
	"github.com/dmitrijs2005/evorun/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	app, closeFn, err := cli.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Error(ctx, "closing local store", "error", err)
		}
	}()

	app.Run(ctx)
}

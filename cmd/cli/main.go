package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fmdata/internal/buildinfo"
	"github.com/dmitrijs2005/fmdata/internal/client/cli"
	"github.com/dmitrijs2005/fmdata/internal/client/config"
	"github.com/dmitrijs2005/fmdata/internal/flagx"
	"github.com/dmitrijs2005/fmdata/internal/logging"
)

func main() {
	args := os.Args[1:]
	command := flagx.Positional(args)
	if len(command) == 0 {
		buildinfo.PrintBuildData(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(args)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	logger.Debug(ctx, "starting", "build", buildinfo.String(), "database_url", cfg.ResolvedDatabaseURL(), "session_store", cfg.SessionStore)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, command); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		stop()
		os.Exit(1)
	}
}

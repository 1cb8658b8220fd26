package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/puckdata/goal-export/internal/app"
	"github.com/puckdata/goal-export/internal/config"
	"github.com/puckdata/goal-export/internal/observability"
	"github.com/puckdata/goal-export/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		gameID = flag.Int64("game", 0, "export a single game by id")
		dates  = flag.String("dates", "", "export a date range, start"+config.DateRangeSeparator+"end (YYYY-MM-DD)")
		out    = flag.String("out", "", "output root directory (required)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	opts, err := config.ParseRunOptions(*gameID, *dates, *out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid arguments: %v\n", err)
		flag.Usage()
		return 2
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Error("stop pyroscope", "error", err)
		}
	}()

	application, err := app.New(ctx, cfg, opts, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("close app", "error", err)
		}
	}()

	if err := application.Run(ctx); err != nil {
		logger.ErrorContext(ctx, "run aborted", "error", err)
		return 1
	}

	return 0
}

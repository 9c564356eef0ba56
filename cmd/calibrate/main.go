package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/batsim/internal/cli"
	"github.com/okian/batsim/internal/config"
	"github.com/okian/batsim/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := cli.ParseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) || opts.Help {
		cli.ShowHelp(os.Stdout)
		return 0
	}
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}
	if err := cli.SetupLogging(os.Stderr, cfg.LogFormat, cfg.LogLevel); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}

	runner, err := cli.NewRunner(ctx, cfg, opts, os.Stdout)
	if err != nil {
		logger.Get().Error(ctx, "failed to start", logger.Error(err))
		return 1
	}
	defer runner.Close()

	if err := runner.Run(ctx, opts); err != nil {
		logger.Get().Error(ctx, "calibrate failed", logger.Error(err))
		return 1
	}
	return 0
}

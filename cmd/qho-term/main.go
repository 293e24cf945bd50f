// Package main renders the oscillator animation as ASCII charts in a terminal.
// Plot settings come from the same environment variables as the server; logs
// go to stderr so they do not interleave with the charts.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/qho/internal/config"
	"github.com/aristath/qho/internal/di"
	"github.com/aristath/qho/internal/modules/display"
	"github.com/aristath/qho/pkg/logger"
)

func main() {
	width := flag.Int("width", display.DefaultWidth, "chart width in columns")
	height := flag.Int("height", display.DefaultHeight, "chart height in rows")
	levels := flag.Bool("levels", false, "also chart every offset level")
	plain := flag.Bool("plain", false, "disable ANSI colours and screen clearing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true, Output: os.Stderr})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink := display.NewTerminalSink(os.Stdout, display.TerminalOptions{
		Width:      *width,
		Height:     *height,
		ANSI:       !*plain,
		ShowLevels: *levels,
	}, log)

	container, _, err := di.Wire(ctx, cfg, log, sink)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	if err := container.Driver.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start animation")
	}
	container.Scheduler.Start()

	<-ctx.Done()

	container.Stop()
	log.Info().Msg("Stopped")
}

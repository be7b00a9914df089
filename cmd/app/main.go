package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wichananm65/cod-storefront/internal/app"
	"github.com/wichananm65/cod-storefront/internal/config"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(2)
	}
	app.SetupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	stores, closeStores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStores(); err != nil {
			slog.Warn("failed to close stores", "err", err)
		}
	}()

	if cfg.SeedDemoData {
		seeded, err := app.SeedIfEmpty(ctx, stores.Products, time.Now().UTC())
		if err != nil {
			return err
		}
		slog.Info("demo catalog", "seeded", seeded)
	}

	a, err := app.New(ctx, cfg, stores)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

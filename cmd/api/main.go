// Command api runs the storefront against in-memory stores seeded with the
// sample catalog. Nothing survives a restart.
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
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "admin123"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(2)
	}
	app.SetupLogger(cfg.LogLevel)

	if err := demoDefaults(&cfg, slog.Default()); err != nil {
		slog.Error("failed to apply demo defaults", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.MemoryStores(app.DemoProducts(time.Now().UTC())))
	if err != nil {
		slog.Error("failed to start", "err", err)
		os.Exit(1)
	}
	if err := a.Run(ctx); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// demoDefaults switches cfg to in-memory stores and fills in the demo
// credentials when none are configured. The demo password is never logged.
func demoDefaults(cfg *config.Config, log *slog.Logger) error {
	cfg.StoreBackend = config.BackendMemory
	cfg.OrderBackend = config.BackendMemory
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "demo-secret"
	}
	if cfg.AdminPasswordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		cfg.AdminPasswordHash = string(hash)
		log.Warn("demo admin password in use, set an admin password hash to replace it")
	}
	return nil
}

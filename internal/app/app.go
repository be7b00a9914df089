// Package app wires the storefront services into a fiber application.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/cod-storefront/internal/admin"
	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/cart"
	"github.com/wichananm65/cod-storefront/internal/catalog"
	"github.com/wichananm65/cod-storefront/internal/config"
	"github.com/wichananm65/cod-storefront/internal/keylock"
	"github.com/wichananm65/cod-storefront/internal/kvstore"
	"github.com/wichananm65/cod-storefront/internal/offer"
	"github.com/wichananm65/cod-storefront/internal/order"
	"github.com/wichananm65/cod-storefront/internal/product"
	"github.com/wichananm65/cod-storefront/internal/settings"
)

const shutdownTimeout = 10 * time.Second

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Stores are the collaborators the services run against. Events and
// Notifier are optional.
type Stores struct {
	Products product.Repository
	Offers   offer.Repository
	Orders   order.Repository
	KV       kvstore.Store
	Settings settings.Repository
	Events   order.EventPublisher
	Notifier order.Notifier
}

type App struct {
	cfg   config.Config
	fiber *fiber.App
	sync  *admin.Sync
}

// New builds the services, loads the admin listings and the site settings,
// and registers every route.
func New(ctx context.Context, cfg config.Config, s Stores) (*App, error) {
	locks := keylock.New()
	carts := cart.NewStore(s.KV, locks, cfg.StoreTimeout)

	manager := order.NewManager(s.Orders, carts, s.KV, locks, cfg.ShippingFee, cfg.StoreTimeout)
	if s.Events != nil {
		manager.WithEvents(s.Events)
	}
	if s.Notifier != nil {
		manager.WithNotifier(s.Notifier)
	}

	sync := admin.NewSync(s.Products, s.Offers, manager, locks, cfg.StoreTimeout)
	if err := sync.Load(ctx); err != nil {
		return nil, err
	}
	site := settings.NewService(s.Settings, cfg.StoreTimeout)
	if err := site.Init(ctx); err != nil {
		return nil, err
	}
	auth := admin.NewAuth(s.KV, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.AdminTokenTTL, cfg.StoreTimeout)

	app := fiber.New(fiber.Config{
		AppName:               cfg.StoreName,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperror.Respond(c, err)
		},
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + cart.SessionHeader,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	catalogHandler := catalog.NewHandler(s.Products, cfg.StoreTimeout)
	offerHandler := offer.NewHandler(s.Offers, cfg.StoreTimeout)
	cartHandler := cart.NewHandler(carts, s.Products, cfg.StoreTimeout)
	orderHandler := order.NewHandler(manager, carts)
	settingsHandler := settings.NewHandler(site)
	adminHandler := admin.NewHandler(sync, auth)

	catalogHandler.RegisterPublicRoutes(app)
	offerHandler.RegisterPublicRoutes(app)
	cartHandler.RegisterPublicRoutes(app)
	orderHandler.RegisterPublicRoutes(app)
	settingsHandler.RegisterPublicRoutes(app)
	adminHandler.RegisterPublicRoutes(app)

	protected := app.Group("/api/v1/admin", auth.Middleware())
	adminHandler.RegisterProtectedRoutes(protected)
	settingsHandler.RegisterProtectedRoutes(protected)

	return &App{cfg: cfg, fiber: app, sync: sync}, nil
}

func (a *App) Fiber() *fiber.App { return a.fiber }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", a.cfg.HTTPAddr)
		errCh <- a.fiber.Listen(a.cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := a.fiber.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

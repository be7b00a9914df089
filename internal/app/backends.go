package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wichananm65/cod-storefront/internal/config"
	"github.com/wichananm65/cod-storefront/internal/db"
	"github.com/wichananm65/cod-storefront/internal/events"
	"github.com/wichananm65/cod-storefront/internal/kvstore"
	"github.com/wichananm65/cod-storefront/internal/notify"
	"github.com/wichananm65/cod-storefront/internal/offer"
	"github.com/wichananm65/cod-storefront/internal/order"
	"github.com/wichananm65/cod-storefront/internal/product"
	"github.com/wichananm65/cod-storefront/internal/settings"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MemoryStores returns in-memory collaborators seeded with products.
func MemoryStores(seed []product.Product) Stores {
	return Stores{
		Products: product.NewInMemoryRepository(seed),
		Offers:   offer.NewInMemoryRepository(nil),
		Orders:   order.NewInMemoryRepository(),
		KV:       kvstore.NewInMemoryStore(),
		Settings: settings.NewInMemoryRepository(),
	}
}

// OpenStores connects the collaborators selected by cfg. The returned close
// function releases every connection that was opened, also on error.
func OpenStores(ctx context.Context, cfg config.Config) (Stores, func() error, error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (Stores, func() error, error) {
		_ = closeAll()
		return Stores{}, func() error { return nil }, err
	}

	var s Stores
	switch cfg.StoreBackend {
	case config.BackendMemory:
		s = MemoryStores(nil)
	case config.BackendPostgres:
		pg, err := db.Open(ctx, cfg.DatabaseURL, cfg.StoreTimeout)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, pg.Close)
		if err := db.Migrate(pg); err != nil {
			return fail(err)
		}
		s = Stores{
			Products: product.NewPostgresRepository(pg),
			Offers:   offer.NewPostgresRepository(pg),
			Orders:   order.NewPostgresRepository(pg),
			KV:       kvstore.NewPostgresStore(pg),
			Settings: settings.NewPostgresRepository(pg),
		}
	default:
		return fail(fmt.Errorf("unsupported store backend %q", cfg.StoreBackend))
	}

	if cfg.OrderBackend == config.BackendMongo {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI).SetTimeout(cfg.StoreTimeout))
		if err != nil {
			return fail(fmt.Errorf("connect mongo: %w", err))
		}
		closers = append(closers, func() error { return client.Disconnect(context.Background()) })
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return fail(fmt.Errorf("ping mongo: %w", err))
		}
		s.Orders = order.NewMongoRepository(client.Database(cfg.MongoDB))
	}

	if cfg.AMQPURL != "" {
		pub, closePub, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, closePub)
		s.Events = pub
	} else {
		slog.Info("AMQP_URL not set, order events are not published")
	}

	if cfg.SendGridAPIKey != "" {
		s.Notifier = notify.NewSendGrid(cfg.SendGridAPIKey, cfg.EmailSender, cfg.StoreName)
	}

	slog.Info("stores ready", "store", cfg.StoreBackend, "orders", cfg.OrderBackend)
	return s, closeAll, nil
}

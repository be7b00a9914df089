// Package admin keeps the admin console's copies of products, offers and
// orders in step with the backing stores.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/keylock"
	"github.com/wichananm65/cod-storefront/internal/offer"
	"github.com/wichananm65/cod-storefront/internal/order"
	"github.com/wichananm65/cod-storefront/internal/product"
	"golang.org/x/sync/errgroup"
)

// Sync mirrors admin edits into the stores. A held copy changes only after
// the store confirmed the write; on failure it stays as it was.
type Sync struct {
	products product.Repository
	offers   offer.Repository
	orders   *order.Manager
	locks    *keylock.Locker
	timeout  time.Duration

	heldProducts *listing[product.Product]
	heldOffers   *listing[offer.Offer]
	heldOrders   *listing[order.Order]

	now   func() time.Time
	newID func() string
}

func NewSync(
	products product.Repository,
	offers offer.Repository,
	orders *order.Manager,
	locks *keylock.Locker,
	timeout time.Duration,
) *Sync {
	return &Sync{
		products: products,
		offers:   offers,
		orders:   orders,
		locks:    locks,
		timeout:  timeout,

		heldProducts: newListing(
			func(p product.Product) string { return p.ID },
			func(p product.Product) time.Time { return p.CreatedAt },
		),
		heldOffers: newListing(
			func(o offer.Offer) string { return o.ID },
			func(o offer.Offer) time.Time { return o.CreatedAt },
		),
		heldOrders: newListing(
			func(o order.Order) string { return o.ID },
			func(o order.Order) time.Time { return o.CreatedAt },
		),

		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Load fetches all three listings. The held copies are replaced only when
// every fetch succeeded.
func (s *Sync) Load(ctx context.Context) error {
	const op = "admin.Sync.Load"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		products []product.Product
		offers   []offer.Offer
		orders   []order.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.products.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		offers, err = s.offers.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.orders.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return apperror.Store(op, err)
	}

	s.heldProducts.reset(products)
	s.heldOffers.reset(offers)
	s.heldOrders.reset(orders)
	slog.Info("admin listings loaded", "op", op, "products", len(products), "offers", len(offers), "orders", len(orders))
	return nil
}

func (s *Sync) Products() []product.Product { return s.heldProducts.all() }
func (s *Sync) Offers() []offer.Offer       { return s.heldOffers.all() }
func (s *Sync) Orders() []order.Order       { return s.heldOrders.all() }

func (s *Sync) CreateProduct(ctx context.Context, draft ProductDraft) (product.Product, error) {
	const op = "admin.Sync.CreateProduct"

	p := draft.product()
	if fields := product.Validate(p); len(fields) > 0 {
		return product.Product{}, &apperror.ValidationError{Fields: fields}
	}
	p.ID = s.newID()
	p.CreatedAt = s.now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	created, err := s.products.Create(ctx, p)
	if err != nil {
		return product.Product{}, apperror.Store(op, err)
	}
	s.heldProducts.prepend(created)
	slog.Info("product created", "op", op, "product", created.ID)
	return created, nil
}

// UpdateProduct merges patch over the current record and writes the whole
// merged record back.
func (s *Sync) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (product.Product, error) {
	const op = "admin.Sync.UpdateProduct"

	if fields := patch.validate(); len(fields) > 0 {
		return product.Product{}, &apperror.ValidationError{Fields: fields}
	}

	unlock, err := s.locks.Lock(ctx, "product:"+id)
	if err != nil {
		return product.Product{}, apperror.Store(op, err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	current, ok := s.heldProducts.get(id)
	if !ok {
		if current, err = s.products.GetByID(ctx, id); err != nil {
			return product.Product{}, apperror.Store(op, err)
		}
	}
	merged := patch.apply(current)
	if fields := product.Validate(merged); len(fields) > 0 {
		return product.Product{}, &apperror.ValidationError{Fields: fields}
	}

	updated, err := s.products.Update(ctx, merged)
	if err != nil {
		return product.Product{}, apperror.Store(op, err)
	}
	s.heldProducts.put(updated)
	return updated, nil
}

// DeleteProduct treats an already missing product as deleted.
func (s *Sync) DeleteProduct(ctx context.Context, id string) error {
	const op = "admin.Sync.DeleteProduct"

	unlock, err := s.locks.Lock(ctx, "product:"+id)
	if err != nil {
		return apperror.Store(op, err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.products.Delete(ctx, id); err != nil && !errors.Is(err, product.ErrNotFound) {
		return apperror.Store(op, err)
	}
	s.heldProducts.remove(id)
	return nil
}

func (s *Sync) CreateOffer(ctx context.Context, draft OfferDraft) (offer.Offer, error) {
	const op = "admin.Sync.CreateOffer"

	o := draft.offer()
	if fields := offer.Validate(o); len(fields) > 0 {
		return offer.Offer{}, &apperror.ValidationError{Fields: fields}
	}
	o.ID = s.newID()
	o.CreatedAt = s.now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	created, err := s.offers.Create(ctx, o)
	if err != nil {
		return offer.Offer{}, apperror.Store(op, err)
	}
	s.heldOffers.prepend(created)
	return created, nil
}

func (s *Sync) UpdateOffer(ctx context.Context, id string, patch OfferPatch) (offer.Offer, error) {
	const op = "admin.Sync.UpdateOffer"

	if fields := patch.validate(); len(fields) > 0 {
		return offer.Offer{}, &apperror.ValidationError{Fields: fields}
	}

	unlock, err := s.locks.Lock(ctx, "offer:"+id)
	if err != nil {
		return offer.Offer{}, apperror.Store(op, err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	current, ok := s.heldOffers.get(id)
	if !ok {
		if current, err = s.offers.GetByID(ctx, id); err != nil {
			return offer.Offer{}, apperror.Store(op, err)
		}
	}
	updated, err := s.offers.Update(ctx, patch.apply(current))
	if err != nil {
		return offer.Offer{}, apperror.Store(op, err)
	}
	s.heldOffers.put(updated)
	return updated, nil
}

func (s *Sync) DeleteOffer(ctx context.Context, id string) error {
	const op = "admin.Sync.DeleteOffer"

	unlock, err := s.locks.Lock(ctx, "offer:"+id)
	if err != nil {
		return apperror.Store(op, err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.offers.Delete(ctx, id); err != nil && !errors.Is(err, offer.ErrNotFound) {
		return apperror.Store(op, err)
	}
	s.heldOffers.remove(id)
	return nil
}

// TransitionOrder applies the action through the order manager and then
// refreshes the held copy of that order.
func (s *Sync) TransitionOrder(ctx context.Context, id, action, reason string) (order.Order, error) {
	updated, err := s.orders.Transition(ctx, id, action, reason)
	if err != nil {
		return order.Order{}, err
	}
	s.heldOrders.put(updated)
	return updated, nil
}

// FindOrders queries the store and folds the results into the held copy.
// An unfiltered listing replaces it.
func (s *Sync) FindOrders(ctx context.Context, f order.Filter) ([]order.Order, error) {
	orders, err := s.orders.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if f.Status == "" && strings.TrimSpace(f.Query) == "" {
		s.heldOrders.reset(orders)
		return orders, nil
	}
	for _, o := range orders {
		s.heldOrders.put(o)
	}
	return orders, nil
}

// Order serves the held copy, falling back to the store for orders submitted
// since the last listing.
func (s *Sync) Order(ctx context.Context, id string) (order.Order, error) {
	if o, ok := s.heldOrders.get(id); ok {
		return o, nil
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	s.heldOrders.put(o)
	return o, nil
}

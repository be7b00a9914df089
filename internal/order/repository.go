package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/cod-storefront/internal/apperror"
)

var (
	ErrNotFound = fmt.Errorf("order %w", apperror.ErrNotFound)
	// ErrStatusChanged is returned by UpdateStatus when the stored status no
	// longer matches the expected one.
	ErrStatusChanged = errors.New("order status changed concurrently")
)

// StatusChange moves an order from From to To in one write. CancelReason is
// stored as given, nil clears it.
type StatusChange struct {
	From         Status
	To           Status
	CancelReason *string
	At           time.Time
}

// Repository is the order collaborator. Listings are newest first.
type Repository interface {
	Create(ctx context.Context, o Order) (Order, error)
	GetByID(ctx context.Context, id string) (Order, error)
	List(ctx context.Context) ([]Order, error)
	ListByStatus(ctx context.Context, statuses ...Status) ([]Order, error)
	ListByIDs(ctx context.Context, ids []string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, change StatusChange) (Order, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{orders: make(map[string]Order)}
}

func (r *InMemoryRepository) Create(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; ok {
		return Order{}, fmt.Errorf("order %s already exists", o.ID)
	}
	r.orders[o.ID] = clone(o)
	return clone(o), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return clone(o), nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Order, error) {
	return r.filter(func(Order) bool { return true }), nil
}

func (r *InMemoryRepository) ListByStatus(_ context.Context, statuses ...Status) ([]Order, error) {
	return r.filter(func(o Order) bool {
		for _, s := range statuses {
			if o.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *InMemoryRepository) ListByIDs(_ context.Context, ids []string) ([]Order, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return r.filter(func(o Order) bool {
		_, ok := want[o.ID]
		return ok
	}), nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, change StatusChange) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	if o.Status != change.From {
		return Order{}, ErrStatusChanged
	}
	o.Status = change.To
	o.CancelReason = change.CancelReason
	o.UpdatedAt = change.At
	r.orders[id] = o
	return clone(o), nil
}

func (r *InMemoryRepository) filter(keep func(Order) bool) []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, clone(o))
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func clone(o Order) Order {
	o.Items = append([]Item(nil), o.Items...)
	if o.CancelReason != nil {
		reason := *o.CancelReason
		o.CancelReason = &reason
	}
	return o
}

package offer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wichananm65/cod-storefront/internal/apperror"
)

var ErrNotFound = fmt.Errorf("offer %w", apperror.ErrNotFound)

// Repository stores offers. List returns the newest offers first.
type Repository interface {
	List(ctx context.Context) ([]Offer, error)
	GetByID(ctx context.Context, id string) (Offer, error)
	Create(ctx context.Context, o Offer) (Offer, error)
	Update(ctx context.Context, o Offer) (Offer, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context, offers []Offer) error
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Offer
}

func NewInMemoryRepository(seed []Offer) *InMemoryRepository {
	return &InMemoryRepository{storage: append([]Offer{}, seed...)}
}

func (r *InMemoryRepository) List(_ context.Context) ([]Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]Offer{}, r.storage...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.storage {
		if o.ID == id {
			return o, nil
		}
	}
	return Offer{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, o Offer) (Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = append(r.storage, o)
	return o, nil
}

func (r *InMemoryRepository) Update(_ context.Context, o Offer) (Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == o.ID {
			r.storage[i] = o
			return o, nil
		}
	}
	return Offer{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Reset(_ context.Context, offers []Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = append([]Offer{}, offers...)
	return nil
}

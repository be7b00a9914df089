package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/keylock"
	"github.com/wichananm65/cod-storefront/internal/kvstore"
	"github.com/wichananm65/cod-storefront/internal/product"
)

const storageName = "cart"

// Store is the per-session cart backed by the client-scoped key-value store.
// All mutations of one session's cart are serialized.
type Store struct {
	kv      kvstore.Store
	locks   *keylock.Locker
	timeout time.Duration
}

func NewStore(kv kvstore.Store, locks *keylock.Locker, timeout time.Duration) *Store {
	return &Store{kv: kv, locks: locks, timeout: timeout}
}

// Load returns the session's cart. Missing or corrupt data is an empty cart.
func (s *Store) Load(ctx context.Context, sessionID string) (Cart, error) {
	if err := checkSession(sessionID); err != nil {
		return Cart{}, err
	}
	return s.load(ctx, sessionID)
}

// AddItem adds qty of p and returns the new item count.
func (s *Store) AddItem(ctx context.Context, sessionID string, p product.Product, qty int) (int, error) {
	if err := checkSession(sessionID); err != nil {
		return 0, err
	}
	if qty < 1 {
		return 0, apperror.Invalid("quantity", "quantity must be a positive integer")
	}
	c, err := s.mutate(ctx, sessionID, func(c *Cart) error { return c.Add(p, qty) })
	if err != nil {
		return 0, err
	}
	return c.ItemCount(), nil
}

func (s *Store) SetQuantity(ctx context.Context, sessionID, productID string, qty int) (Cart, error) {
	if err := checkSession(sessionID); err != nil {
		return Cart{}, err
	}
	if qty < 0 {
		return Cart{}, apperror.Invalid("quantity", "quantity must not be negative")
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error { return c.SetQuantity(productID, qty) })
}

// RemoveItem is idempotent.
func (s *Store) RemoveItem(ctx context.Context, sessionID, productID string) (Cart, error) {
	if err := checkSession(sessionID); err != nil {
		return Cart{}, err
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.Remove(productID)
		return nil
	})
}

// Checkout runs fn with the session's cart while holding the session lock.
// The cart is cleared only when fn succeeds; a failure to clear is logged and
// does not fail the checkout.
func (s *Store) Checkout(ctx context.Context, sessionID string, fn func(Cart) error) error {
	const op = "cart.Checkout"
	log := slog.With("op", op, "session", sessionID)

	if err := checkSession(sessionID); err != nil {
		return err
	}
	unlock, err := s.locks.Lock(ctx, lockKey(sessionID))
	if err != nil {
		return apperror.Store(op, err)
	}
	defer unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}

	s.clear(context.WithoutCancel(ctx), sessionID, log)
	return nil
}

// clear removes the checked-out cart. When the delete fails an empty cart is
// written over it so the submitted lines cannot be checked out twice.
func (s *Store) clear(ctx context.Context, sessionID string, log *slog.Logger) {
	key := kvstore.ClientKey(sessionID, storageName)

	delCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.kv.Delete(delCtx, key)
	if err == nil || errors.Is(err, kvstore.ErrNotFound) {
		return
	}
	log.Warn("failed to clear cart after checkout, overwriting with an empty cart", "err", err)

	setCtx, cancelSet := context.WithTimeout(ctx, s.timeout)
	defer cancelSet()
	if err := s.kv.Set(setCtx, key, []byte("[]")); err != nil {
		log.Error("cart still holds submitted lines", "err", err)
	}
}

func (s *Store) mutate(ctx context.Context, sessionID string, fn func(*Cart) error) (Cart, error) {
	const op = "cart.Store.mutate"

	unlock, err := s.locks.Lock(ctx, lockKey(sessionID))
	if err != nil {
		return Cart{}, apperror.Store(op, err)
	}
	defer unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(&c); err != nil {
		return Cart{}, err
	}
	if err := s.save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Store) load(ctx context.Context, sessionID string) (Cart, error) {
	const op = "cart.Store.load"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.kv.Get(ctx, kvstore.ClientKey(sessionID, storageName))
	if errors.Is(err, kvstore.ErrNotFound) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, apperror.Store(op, err)
	}
	return Decode(raw), nil
}

func (s *Store) save(ctx context.Context, sessionID string, c Cart) error {
	const op = "cart.Store.save"

	raw, err := json.Marshal(c)
	if err != nil {
		return apperror.Store(op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.kv.Set(ctx, kvstore.ClientKey(sessionID, storageName), raw); err != nil {
		return apperror.Store(op, err)
	}
	return nil
}

func lockKey(sessionID string) string {
	return "session:" + sessionID
}

func checkSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return apperror.Invalid("session", "session id is required")
	}
	return nil
}

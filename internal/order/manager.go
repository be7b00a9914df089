package order

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/cart"
	"github.com/wichananm65/cod-storefront/internal/keylock"
	"github.com/wichananm65/cod-storefront/internal/kvstore"
)

const historyName = "orders"

// EventPublisher announces order lifecycle changes.
type EventPublisher interface {
	OrderSubmitted(ctx context.Context, o Order) error
	OrderStatusChanged(ctx context.Context, o Order, from Status) error
}

// Notifier tells the customer about a submitted order.
type Notifier interface {
	OrderConfirmation(ctx context.Context, o Order) error
}

type nopEvents struct{}

func (nopEvents) OrderSubmitted(context.Context, Order) error             { return nil }
func (nopEvents) OrderStatusChanged(context.Context, Order, Status) error { return nil }

type nopNotifier struct{}

func (nopNotifier) OrderConfirmation(context.Context, Order) error { return nil }

// Manager submits orders from carts and enforces the fulfillment state
// machine. Transitions of one order are serialized.
type Manager struct {
	repo        Repository
	carts       *cart.Store
	history     kvstore.Store
	locks       *keylock.Locker
	events      EventPublisher
	notifier    Notifier
	shippingFee decimal.Decimal
	timeout     time.Duration

	now   func() time.Time
	newID func() string
}

func NewManager(
	repo Repository,
	carts *cart.Store,
	history kvstore.Store,
	locks *keylock.Locker,
	shippingFee decimal.Decimal,
	timeout time.Duration,
) *Manager {
	return &Manager{
		repo:        repo,
		carts:       carts,
		history:     history,
		locks:       locks,
		events:      nopEvents{},
		notifier:    nopNotifier{},
		shippingFee: shippingFee,
		timeout:     timeout,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       NewID,
	}
}

func (m *Manager) WithEvents(p EventPublisher) *Manager {
	m.events = p
	return m
}

func (m *Manager) WithNotifier(n Notifier) *Manager {
	m.notifier = n
	return m
}

// ShippingFee is the flat fee added to every order.
func (m *Manager) ShippingFee() decimal.Decimal { return m.shippingFee }

// Submit converts the session's cart into a requested order. The cart is
// cleared only once the order store has confirmed the write; on any failure
// the cart is left as it was.
func (m *Manager) Submit(ctx context.Context, sessionID string, customer Customer) (Order, error) {
	const op = "order.Manager.Submit"
	log := slog.With("op", op, "session", sessionID)

	if fields := customer.Validate(); fields != nil {
		return Order{}, &apperror.ValidationError{Fields: fields}
	}

	var created Order
	err := m.carts.Checkout(ctx, sessionID, func(c cart.Cart) error {
		if c.IsEmpty() {
			return apperror.Invalid("cart", "cart is empty")
		}

		now := m.now()
		o := Order{
			ID:        m.newID(),
			Customer:  customer.normalized(),
			Items:     snapshot(c),
			Totals:    totalsOf(c, m.shippingFee),
			Status:    StatusRequested,
			CreatedAt: now,
			UpdatedAt: now,
		}

		storeCtx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		saved, err := m.repo.Create(storeCtx, o)
		if err != nil {
			return apperror.Store(op, err)
		}
		created = saved

		if err := m.appendHistory(ctx, sessionID, saved.ID); err != nil {
			log.Warn("failed to record order in session history", "order", saved.ID, "err", err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	log.Info("order submitted", "order", created.ID, "total", created.Totals.Total.String())

	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()
	if err := m.events.OrderSubmitted(sideCtx, created); err != nil {
		log.Warn("failed to publish order submitted", "order", created.ID, "err", err)
	}
	if created.Customer.Email != "" {
		if err := m.notifier.OrderConfirmation(sideCtx, created); err != nil {
			log.Warn("failed to send order confirmation", "order", created.ID, "err", err)
		}
	}
	return created, nil
}

// Transition applies action to the order. Cancelling requires a reason. The
// guard is checked against the stored status, and the store write carries
// the expected status so a concurrent writer cannot be overwritten silently.
func (m *Manager) Transition(ctx context.Context, id, action, reason string) (Order, error) {
	const op = "order.Manager.Transition"
	log := slog.With("op", op, "order", id)

	a, err := ParseAction(action)
	if err != nil {
		return Order{}, err
	}
	reason = strings.TrimSpace(reason)
	if a == ActionCancel && reason == "" {
		return Order{}, apperror.Invalid("cancelReason", "a reason is required to cancel an order")
	}

	unlock, err := m.locks.Lock(ctx, "order:"+id)
	if err != nil {
		return Order{}, apperror.Store(op, err)
	}
	defer unlock()

	current, err := m.get(ctx, id)
	if err != nil {
		return Order{}, apperror.Store(op, err)
	}
	next, err := Next(current.Status, a)
	if err != nil {
		return Order{}, err
	}

	change := StatusChange{From: current.Status, To: next, At: m.now()}
	if next == StatusCancelled {
		change.CancelReason = &reason
	}

	storeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	updated, err := m.repo.UpdateStatus(storeCtx, id, change)
	if errors.Is(err, ErrStatusChanged) {
		latest, getErr := m.get(ctx, id)
		if getErr != nil {
			return Order{}, apperror.Store(op, getErr)
		}
		return Order{}, &apperror.InvalidTransitionError{From: string(latest.Status), Action: string(a)}
	}
	if err != nil {
		return Order{}, apperror.Store(op, err)
	}

	log.Info("order status changed", "from", current.Status, "to", updated.Status)

	sideCtx, cancelSide := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancelSide()
	if err := m.events.OrderStatusChanged(sideCtx, updated, current.Status); err != nil {
		log.Warn("failed to publish order status change", "err", err)
	}
	return updated, nil
}

func (m *Manager) Get(ctx context.Context, id string) (Order, error) {
	o, err := m.get(ctx, id)
	if err != nil {
		return Order{}, apperror.Store("order.Manager.Get", err)
	}
	return o, nil
}

func (m *Manager) List(ctx context.Context) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	orders, err := m.repo.List(ctx)
	if err != nil {
		return nil, apperror.Store("order.Manager.List", err)
	}
	return orders, nil
}

func (m *Manager) ListByStatus(ctx context.Context, statuses ...Status) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	orders, err := m.repo.ListByStatus(ctx, statuses...)
	if err != nil {
		return nil, apperror.Store("order.Manager.ListByStatus", err)
	}
	return orders, nil
}

// Filter narrows an order listing. An empty Status means every status.
type Filter struct {
	Status Status
	Query  string
}

// Find lists orders newest first, restricted to f.Status when set and to
// orders whose id, customer name or phone match f.Query.
func (m *Manager) Find(ctx context.Context, f Filter) ([]Order, error) {
	var (
		orders []Order
		err    error
	)
	if f.Status == "" {
		orders, err = m.List(ctx)
	} else {
		orders, err = m.ListByStatus(ctx, f.Status)
	}
	if err != nil {
		return nil, err
	}
	out := orders[:0]
	for _, o := range orders {
		if o.matches(f.Query) {
			out = append(out, o)
		}
	}
	return out, nil
}

// SessionOrders returns the orders submitted from sessionID, newest first.
func (m *Manager) SessionOrders(ctx context.Context, sessionID string) ([]Order, error) {
	const op = "order.Manager.SessionOrders"

	ids, err := m.loadHistory(ctx, sessionID)
	if err != nil {
		return nil, apperror.Store(op, err)
	}
	if len(ids) == 0 {
		return []Order{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	orders, err := m.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Store(op, err)
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (m *Manager) get(ctx context.Context, id string) (Order, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.repo.GetByID(ctx, id)
}

// loadHistory treats missing or unreadable history as empty.
func (m *Manager) loadHistory(ctx context.Context, sessionID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	raw, err := m.history.Get(ctx, kvstore.ClientKey(sessionID, historyName))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, nil
	}
	return ids, nil
}

func (m *Manager) appendHistory(ctx context.Context, sessionID, orderID string) error {
	ids, err := m.loadHistory(ctx, sessionID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(append(ids, orderID))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.history.Set(ctx, kvstore.ClientKey(sessionID, historyName), raw)
}

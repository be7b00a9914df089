package settings

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wichananm65/cod-storefront/internal/apperror"
)

// Service owns the current settings. Init loads them once at startup; Update
// replaces the held copy only after the store accepted the new values.
type Service struct {
	repo    Repository
	timeout time.Duration

	mu      sync.RWMutex
	current Settings
	now     func() time.Time
}

func NewService(repo Repository, timeout time.Duration) *Service {
	return &Service{
		repo:    repo,
		timeout: timeout,
		current: Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Init loads stored settings, keeping the defaults when none were saved yet.
func (s *Service) Init(ctx context.Context) error {
	const op = "settings.Service.Init"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stored, err := s.repo.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		slog.Info("no stored settings, using defaults", "op", op)
		return nil
	}
	if err != nil {
		return apperror.Store(op, err)
	}

	s.mu.Lock()
	s.current = stored
	s.mu.Unlock()
	return nil
}

func (s *Service) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) Update(ctx context.Context, next Settings) (Settings, error) {
	const op = "settings.Service.Update"

	if fields := Validate(next); fields != nil {
		return Settings{}, &apperror.ValidationError{Fields: fields}
	}
	next.UpdatedAt = s.now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Save(ctx, next); err != nil {
		return Settings{}, apperror.Store(op, err)
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}

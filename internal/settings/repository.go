package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/wichananm65/cod-storefront/internal/apperror"
)

var ErrNotFound = fmt.Errorf("settings %w", apperror.ErrNotFound)

type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	saved *Settings
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Get(_ context.Context) (Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.saved == nil {
		return Settings{}, ErrNotFound
	}
	return *r.saved, nil
}

func (r *InMemoryRepository) Save(_ context.Context, s Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = &s
	return nil
}

const (
	settingsRowID = 1

	getSettingsQuery = `
		SELECT site_name, site_logo, primary_color, secondary_color, facebook_url,
			instagram_url, whatsapp_number, hero_title, hero_subtitle, updated_at
		FROM site_settings
		WHERE id = $1
	`
	upsertSettingsQuery = `
		INSERT INTO site_settings (id, site_name, site_logo, primary_color, secondary_color,
			facebook_url, instagram_url, whatsapp_number, hero_title, hero_subtitle, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
			site_name = EXCLUDED.site_name,
			site_logo = EXCLUDED.site_logo,
			primary_color = EXCLUDED.primary_color,
			secondary_color = EXCLUDED.secondary_color,
			facebook_url = EXCLUDED.facebook_url,
			instagram_url = EXCLUDED.instagram_url,
			whatsapp_number = EXCLUDED.whatsapp_number,
			hero_title = EXCLUDED.hero_title,
			hero_subtitle = EXCLUDED.hero_subtitle,
			updated_at = EXCLUDED.updated_at
	`
)

// PostgresRepository keeps the settings in row id 1 of site_settings.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.db.QueryRowContext(ctx, getSettingsQuery, settingsRowID).Scan(
		&s.SiteName, &s.SiteLogo, &s.PrimaryColor, &s.SecondaryColor, &s.FacebookURL,
		&s.InstagramURL, &s.WhatsappNumber, &s.HeroTitle, &s.HeroSubtitle, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	if err != nil {
		return Settings{}, fmt.Errorf("select settings: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Save(ctx context.Context, s Settings) error {
	_, err := r.db.ExecContext(ctx, upsertSettingsQuery, settingsRowID,
		s.SiteName, s.SiteLogo, s.PrimaryColor, s.SecondaryColor, s.FacebookURL,
		s.InstagramURL, s.WhatsappNumber, s.HeroTitle, s.HeroSubtitle, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

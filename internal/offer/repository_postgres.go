package offer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	offerColumns = `id, title, description, image, created_at`

	listOffersQuery   = `SELECT ` + offerColumns + ` FROM offers ORDER BY created_at DESC, id`
	getOfferByIDQuery = `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	insertOfferQuery  = `INSERT INTO offers (` + offerColumns + `) VALUES ($1,$2,$3,$4,$5)`
	updateOfferQuery  = `UPDATE offers SET title = $1, description = $2, image = $3 WHERE id = $4`
	deleteOfferQuery  = `DELETE FROM offers WHERE id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Offer, error) {
	rows, err := r.db.QueryContext(ctx, listOffersQuery)
	if err != nil {
		return nil, fmt.Errorf("select offers: %w", err)
	}
	defer rows.Close()

	out := make([]Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Offer, error) {
	o, err := scanOffer(r.db.QueryRowContext(ctx, getOfferByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Offer{}, ErrNotFound
	}
	if err != nil {
		return Offer{}, fmt.Errorf("select offer: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) Create(ctx context.Context, o Offer) (Offer, error) {
	if err := insertOffer(ctx, r.db, o); err != nil {
		return Offer{}, err
	}
	return o, nil
}

func (r *PostgresRepository) Update(ctx context.Context, o Offer) (Offer, error) {
	result, err := r.db.ExecContext(ctx, updateOfferQuery, o.Title, o.Description, nullable(o.Image), o.ID)
	if err != nil {
		return Offer{}, fmt.Errorf("update offer: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return Offer{}, fmt.Errorf("update offer: %w", err)
	} else if n == 0 {
		return Offer{}, ErrNotFound
	}
	return r.GetByID(ctx, o.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, deleteOfferQuery, id)
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("delete offer: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Reset(ctx context.Context, offers []Offer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM offers`); err != nil {
		return fmt.Errorf("clear offers: %w", err)
	}
	for _, o := range offers {
		if err := insertOffer(ctx, tx, o); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOffer(ctx context.Context, db execer, o Offer) error {
	_, err := db.ExecContext(ctx, insertOfferQuery, o.ID, o.Title, o.Description, nullable(o.Image), o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(scanner rowScanner) (Offer, error) {
	var (
		o     Offer
		image sql.NullString
	)
	if err := scanner.Scan(&o.ID, &o.Title, &o.Description, &image, &o.CreatedAt); err != nil {
		return Offer{}, err
	}
	o.Image = image.String
	return o, nil
}

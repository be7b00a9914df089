package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	orderColumns = `id, customer, items, totals, status, cancel_reason, created_at, updated_at`

	insertOrderQuery = `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	getOrderByIDQuery = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersQuery   = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id`

	listOrdersByStatusQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = ANY($1)
		ORDER BY created_at DESC, id
	`
	listOrdersByIDsQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = ANY($1)
		ORDER BY created_at DESC, id
	`
	updateOrderStatusQuery = `
		UPDATE orders
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + orderColumns
)

// PostgresRepository stores customer, items and totals as jsonb so the
// snapshot taken at submission is kept exactly as written.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o Order) (Order, error) {
	customer, items, totals, err := marshalParts(o)
	if err != nil {
		return Order{}, err
	}
	_, err = r.db.ExecContext(ctx, insertOrderQuery,
		o.ID, string(customer), string(items), string(totals), string(o.Status), o.CancelReason, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("select order: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Order, error) {
	return r.query(ctx, listOrdersQuery)
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, statuses ...Status) ([]Order, error) {
	if len(statuses) == 0 {
		return []Order{}, nil
	}
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return r.query(ctx, listOrdersByStatusQuery, pq.Array(values))
}

// ListByIDs skips ids that do not exist.
func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []string) ([]Order, error) {
	if len(ids) == 0 {
		return []Order{}, nil
	}
	return r.query(ctx, listOrdersByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, change StatusChange) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, updateOrderStatusQuery,
		string(change.To), change.CancelReason, change.At, id, string(change.From)))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return Order{}, getErr
		}
		return Order{}, ErrStatusChanged
	}
	if err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func marshalParts(o Order) (customer, items, totals []byte, err error) {
	if customer, err = json.Marshal(o.Customer); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal customer: %w", err)
	}
	if items, err = json.Marshal(o.Items); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal items: %w", err)
	}
	if totals, err = json.Marshal(o.Totals); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal totals: %w", err)
	}
	return customer, items, totals, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(scanner rowScanner) (Order, error) {
	var (
		o        Order
		customer []byte
		items    []byte
		totals   []byte
		status   string
		reason   sql.NullString
	)
	if err := scanner.Scan(&o.ID, &customer, &items, &totals, &status, &reason, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return Order{}, fmt.Errorf("customer: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("items: %w", err)
	}
	if err := json.Unmarshal(totals, &o.Totals); err != nil {
		return Order{}, fmt.Errorf("totals: %w", err)
	}
	o.Status = Status(status)
	if reason.Valid {
		o.CancelReason = &reason.String
	}
	return o, nil
}

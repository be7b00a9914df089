package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRowColumns = []string{"id", "customer", "items", "totals", "status", "cancel_reason", "created_at", "updated_at"}

const (
	customerJSON = `{"name":"Somchai","phone":"0812345678","address":"12 Moo 3","city":"Chiang Mai"}`
	itemsJSON    = `[{"productId":"p1","title":"Vase","price":"100","quantity":2}]`
	totalsJSON   = `{"subtotal":"200","shipping":"50","total":"250"}`
)

func TestPostgresCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	o := Order{
		ID:        "ORDER-1",
		Customer:  Customer{Name: "Somchai", Phone: "0812345678", Address: "12 Moo 3", City: "Chiang Mai"},
		Items:     []Item{{ProductID: "p1", Title: "Vase", Price: decimal.NewFromInt(100), Quantity: 2}},
		Totals:    Totals{Subtotal: decimal.NewFromInt(200), Shipping: decimal.NewFromInt(50), Total: decimal.NewFromInt(250)},
		Status:    StatusRequested,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("ORDER-1", customerJSON, itemsJSON, totalsJSON, "requested", nil, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err = repo.Create(context.Background(), o)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByID_DecodesSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM orders WHERE id").WithArgs("ORDER-1").
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow("ORDER-1", []byte(customerJSON), []byte(itemsJSON), []byte(totalsJSON), "cancelled", "out of stock", now, now))

	o, err := repo.GetByID(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, "Somchai", o.Customer.Name)
	require.Len(t, o.Items, 1)
	assert.True(t, o.Totals.Total.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, StatusCancelled, o.Status)
	require.NotNil(t, o.CancelReason)
	assert.Equal(t, "out of stock", *o.CancelReason)
}

func TestPostgresListByStatus_UsesArrayParameter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("WHERE status = ANY").
		WithArgs(pq.Array([]string{"requested", "shipping"})).
		WillReturnRows(sqlmock.NewRows(orderRowColumns))

	orders, err := repo.ListByStatus(context.Background(), StatusRequested, StatusShipping)
	require.NoError(t, err)
	assert.Empty(t, orders)
	require.NoError(t, mock.ExpectationsWereMet())

	none, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostgresUpdateStatus_StaleStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("UPDATE orders").
		WithArgs("shipping", nil, now, "ORDER-1", "requested").
		WillReturnRows(sqlmock.NewRows(orderRowColumns))
	mock.ExpectQuery("FROM orders WHERE id").WithArgs("ORDER-1").
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow("ORDER-1", []byte(customerJSON), []byte(itemsJSON), []byte(totalsJSON), "cancelled", "dup", now, now))

	_, err = repo.UpdateStatus(context.Background(), "ORDER-1", StatusChange{From: StatusRequested, To: StatusShipping, At: now})
	require.ErrorIs(t, err, ErrStatusChanged)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateStatus_MissingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("UPDATE orders").WillReturnRows(sqlmock.NewRows(orderRowColumns))
	mock.ExpectQuery("FROM orders WHERE id").WillReturnRows(sqlmock.NewRows(orderRowColumns))

	_, err = repo.UpdateStatus(context.Background(), "ghost", StatusChange{From: StatusRequested, To: StatusShipping})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresList_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM orders ORDER BY").WillReturnError(errors.New("connection reset"))

	_, err = repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select orders")
}

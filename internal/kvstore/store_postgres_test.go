package kvstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_GetMissingKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(getValueQuery)).
		WithArgs("session:s1:cart").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err = NewPostgresStore(db).Get(context.Background(), "session:s1:cart")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresStore(db)

	mock.ExpectExec("INSERT INTO client_kv").
		WithArgs("k", []byte(`[1]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT value FROM client_kv").
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[1]`)))

	require.NoError(t, s.Set(context.Background(), "k", []byte(`[1]`)))
	v, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, `[1]`, string(v))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM client_kv").WithArgs("k").WillReturnError(errors.New("conn reset"))

	err = NewPostgresStore(db).Delete(context.Background(), "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "delete kv")
}

func TestInMemoryStore_CopiesValues(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'z'

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(v))

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

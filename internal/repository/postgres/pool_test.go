package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/stockroom/internal/errs"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func strp(s string) *string { return &s }

func TestUniqueViolation_Classify(t *testing.T) {
	cases := []struct {
		constraint string
		want       string
	}{
		{uqUsersUsername, "username"},
		{uqUsersEmail, "email"},
		{uqProductsName, "name"},
		{"users_username_key", "username"},
		{"something_else", "unique"},
	}
	for _, c := range cases {
		err := uniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: c.constraint})
		require.ErrorIs(t, err, errs.ErrAlreadyExists)
		sc, ok := errs.AsStoreConflict(err)
		require.True(t, ok)
		require.Equal(t, c.want, sc.Field, c.constraint)
	}

	require.Nil(t, uniqueViolation(nil))
	require.Nil(t, uniqueViolation(errors.New("boom")))
	require.Nil(t, uniqueViolation(&pgconn.PgError{Code: "23503"}))
}

func TestNotFound_Mapping(t *testing.T) {
	require.ErrorIs(t, notFound(pgx.ErrNoRows), errs.ErrNotFound)
	boom := errors.New("boom")
	require.Equal(t, boom, notFound(boom))
	require.NoError(t, notFound(nil))
}

func TestDB_Ping(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	mock.ExpectPing()
	require.NoError(t, db.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

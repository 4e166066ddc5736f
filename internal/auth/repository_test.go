// AngelaMos | 2026
// repository_test.go

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/identity-api/internal/core"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func testEntry() *BlacklistedToken {
	return &BlacklistedToken{
		ID:        "22222222-2222-2222-2222-222222222222",
		Token:     "header.payload.signature",
		UserID:    "11111111-1111-1111-1111-111111111111",
		ExpiresAt: time.Now().Add(time.Hour),
		Reason:    "logout",
	}
}

func TestRepository_Record(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	entry := testEntry()
	createdAt := time.Now()

	mock.ExpectQuery(`(?s)INSERT INTO blacklisted_tokens.*RETURNING created_at`).
		WithArgs(
			entry.ID,
			entry.Token,
			entry.UserID,
			entry.ExpiresAt,
			entry.Reason,
		).
		WillReturnRows(
			sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt),
		)

	err := repo.Record(context.Background(), entry)
	require.NoError(t, err)
	assert.WithinDuration(t, createdAt, entry.CreatedAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Record_DuplicateToken(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`(?s)INSERT INTO blacklisted_tokens.*RETURNING created_at`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Record(context.Background(), testEntry())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDuplicateKey))
}

func TestRepository_IsRevoked(t *testing.T) {
	t.Parallel()

	// The EXISTS probe only counts rows whose expires_at is still in the
	// future, so an expired ledger row reads as not revoked.
	pattern := `(?s)SELECT EXISTS\(\s+SELECT 1 FROM blacklisted_tokens\s+` +
		`WHERE token = \$1 AND expires_at > NOW\(\)\s+\)`

	for _, tc := range []struct {
		name    string
		revoked bool
	}{
		{name: "live row matches", revoked: true},
		{name: "no live row", revoked: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := newMockRepository(t)

			mock.ExpectQuery(pattern).
				WithArgs("header.payload.signature").
				WillReturnRows(
					sqlmock.NewRows([]string{"exists"}).AddRow(tc.revoked),
				)

			revoked, err := repo.IsRevoked(
				context.Background(),
				"header.payload.signature",
			)
			require.NoError(t, err)
			assert.Equal(t, tc.revoked, revoked)
		})
	}
}

func TestRepository_PurgeExpired(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	mock.ExpectExec(`(?s)DELETE FROM blacklisted_tokens\s+WHERE expires_at < NOW\(\)`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := repo.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

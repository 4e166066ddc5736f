// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"

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

const (
	consumeVerificationPattern = `(?s)UPDATE users\s+` +
		`SET is_email_verified = true,\s+` +
		`email_verification_token = NULL,\s+` +
		`email_verification_expires = NULL,\s+` +
		`updated_at = NOW\(\)\s+` +
		`WHERE email_verification_token = \$1\s+` +
		`AND email_verification_expires > NOW\(\)\s+` +
		`AND is_active = true`

	consumeResetPattern = `(?s)UPDATE users\s+` +
		`SET password_hash = \$2,\s+` +
		`password_reset_token = NULL,\s+` +
		`password_reset_expires = NULL,\s+` +
		`updated_at = NOW\(\)\s+` +
		`WHERE password_reset_token = \$1\s+` +
		`AND password_reset_expires > NOW\(\)\s+` +
		`AND is_active = true`
)

func TestRepository_ConsumeVerificationToken(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	mock.ExpectExec(consumeVerificationPattern).
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ConsumeVerificationToken(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ConsumeVerificationToken_SecondUseRejected(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	// The first consume clears the token column, so the identical
	// statement matches zero rows on replay.
	mock.ExpectExec(consumeVerificationPattern).
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(consumeVerificationPattern).
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(
		t,
		repo.ConsumeVerificationToken(context.Background(), "tok-1"),
	)

	err := repo.ConsumeVerificationToken(context.Background(), "tok-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ConsumeVerificationToken_ExpiredUnmatched(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	// Expiry lives in the WHERE clause: a stored but stale token matches
	// zero rows, same as a token that never existed.
	mock.ExpectExec(consumeVerificationPattern).
		WithArgs("stale-token").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ConsumeVerificationToken(context.Background(), "stale-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestRepository_ConsumeResetToken(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	mock.ExpectExec(consumeResetPattern).
		WithArgs("tok-2", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ConsumeResetToken(context.Background(), "tok-2", "new-hash")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ConsumeResetToken_SingleUse(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	mock.ExpectExec(consumeResetPattern).
		WithArgs("tok-2", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(consumeResetPattern).
		WithArgs("tok-2", "other-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(
		t,
		repo.ConsumeResetToken(context.Background(), "tok-2", "new-hash"),
	)

	err := repo.ConsumeResetToken(context.Background(), "tok-2", "other-hash")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`(?s)INSERT INTO users.*RETURNING created_at, updated_at`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{
		ID:    "11111111-1111-1111-1111-111111111111",
		Email: "taken@example.com",
		Role:  RoleUser,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDuplicateKey))
}

func TestRepository_GetByID_InactiveInvisible(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`(?s)SELECT.*FROM users\s+WHERE id = \$1 AND is_active = true`).
		WithArgs("11111111-1111-1111-1111-111111111111").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(
		context.Background(),
		"11111111-1111-1111-1111-111111111111",
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestRepository_Deactivate_MissingUser(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	mock.ExpectExec(`(?s)UPDATE users\s+SET is_active = false.*WHERE id = \$1 AND is_active = true`).
		WithArgs("11111111-1111-1111-1111-111111111111").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(
		context.Background(),
		"11111111-1111-1111-1111-111111111111",
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

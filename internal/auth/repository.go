// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/identity-api/internal/core"
)

type Repository interface {
	Record(ctx context.Context, entry *BlacklistedToken) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Record(
	ctx context.Context,
	entry *BlacklistedToken,
) error {
	query := `
		INSERT INTO blacklisted_tokens (
			id, token, user_id, expires_at, reason
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &entry.CreatedAt, query,
		entry.ID,
		entry.Token,
		entry.UserID,
		entry.ExpiresAt,
		entry.Reason,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("record blacklisted token: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("record blacklisted token: %w", err)
	}

	return nil
}

// IsRevoked treats an expired ledger row as absent. Expiry makes the token
// unusable through the normal signature check anyway, so matching it here
// would only change which rejection the caller sees.
func (r *repository) IsRevoked(
	ctx context.Context,
	token string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM blacklisted_tokens
			WHERE token = $1 AND expires_at > NOW()
		)`

	var revoked bool
	if err := r.db.GetContext(ctx, &revoked, query, token); err != nil {
		return false, fmt.Errorf("check blacklisted token: %w", err)
	}

	return revoked, nil
}

func (r *repository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM blacklisted_tokens
		WHERE expires_at < NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("purge blacklisted tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge blacklisted tokens: %w", err)
	}

	return rows, nil
}

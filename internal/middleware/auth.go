// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/angelamos/identity-api/internal/core"
)

type TokenClaims struct {
	UserID    string
	ExpiresAt time.Time
}

type TokenVerifier interface {
	DecodeAccessToken(token string) (*TokenClaims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// IdentityLoader resolves a user id from a token into an Identity. It must
// return core.ErrNotFound both for absent and for deactivated accounts so
// the two stay indistinguishable to callers.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID string) (*Identity, error)
}

// Authenticator is the mandatory auth gate. Order matters: the revocation
// ledger is consulted before the signature is trusted, because a logged-out
// token still carries a valid signature.
func Authenticator(
	verifier TokenVerifier,
	ledger RevocationChecker,
	users IdentityLoader,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				core.Unauthorized(w, "Access denied. No token provided.")
				return
			}

			identity, err := resolveIdentity(
				r.Context(),
				verifier,
				ledger,
				users,
				token,
			)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			ctx = context.WithValue(ctx, TokenKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth runs the same gate but never rejects: on any failure the
// request simply continues anonymously.
func OptionalAuth(
	verifier TokenVerifier,
	ledger RevocationChecker,
	users IdentityLoader,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token != "" {
				identity, err := resolveIdentity(
					r.Context(),
					verifier,
					ledger,
					users,
					token,
				)
				if err == nil {
					ctx := context.WithValue(r.Context(), IdentityKey, identity)
					ctx = context.WithValue(ctx, TokenKey, token)
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func resolveIdentity(
	ctx context.Context,
	verifier TokenVerifier,
	ledger RevocationChecker,
	users IdentityLoader,
	token string,
) (*Identity, error) {
	revoked, err := ledger.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, core.TokenRevokedError()
	}

	claims, err := verifier.DecodeAccessToken(token)
	if err != nil {
		return nil, err
	}

	identity, err := users.LoadIdentity(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.UnauthorizedError("Invalid token or user not found.")
		}
		return nil, err
	}

	return identity, nil
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	// Exact "Bearer" scheme only.
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.InternalServerError(w, err)
	}
}

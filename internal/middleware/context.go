// AngelaMos | 2026
// context.go

package middleware

import (
	"context"
)

type contextKey string

const (
	IdentityKey   contextKey = "identity"
	TokenKey      contextKey = "bearer_token"
	RequestIDKey  contextKey = "request_id"
	APIVersionKey contextKey = "api_version"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the resolved caller attached to the request context by the
// auth gate. It is a snapshot of the user row, not a live handle.
type Identity struct {
	ID            string
	Email         string
	Role          string
	EmailVerified bool
}

func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(IdentityKey).(*Identity); ok {
		return identity
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.ID
	}
	return ""
}

func GetUserRole(ctx context.Context) string {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.Role
	}
	return ""
}

// GetToken returns the raw bearer token the auth gate validated, for
// downstream use by logout.
func GetToken(ctx context.Context) string {
	if token, ok := ctx.Value(TokenKey).(string); ok {
		return token
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetIdentity(ctx) != nil
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRole(ctx) == RoleAdmin
}

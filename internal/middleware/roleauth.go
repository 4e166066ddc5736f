// AngelaMos | 2026
// roleauth.go

package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/identity-api/internal/core"
)

// HasRole reports whether the identity carries exactly the given role.
// A nil identity never passes.
func HasRole(identity *Identity, role string) bool {
	return identity != nil && identity.Role == role
}

// OwnsResource reports whether the identity may act on the resource owned
// by ownerID: admins always, everyone else only on their own id. An empty
// ownerID is the self-access shorthand and resolves to the caller's id.
func OwnsResource(identity *Identity, ownerID string) bool {
	if identity == nil {
		return false
	}
	if identity.IsAdmin() {
		return true
	}
	if ownerID == "" {
		return true
	}
	return identity.ID == ownerID
}

// RequireRole gates a route on an exact role. Missing identity yields 401,
// wrong role 403 — the two must stay distinguishable.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())

			if identity == nil {
				core.Unauthorized(w, "Authentication required")
				return
			}

			if !HasRole(identity, role) {
				core.Forbidden(w, "Access denied. Insufficient permissions.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(RoleAdmin)(next)
}

// RequireAdminOrOwner gates a route on ownership of the subject identified
// by the named URL parameter, with admin override.
func RequireAdminOrOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())

			if identity == nil {
				core.Unauthorized(w, "Authentication required")
				return
			}

			ownerID := chi.URLParam(r, param)
			if !OwnsResource(identity, ownerID) {
				core.Forbidden(
					w,
					"Access denied. You can only access your own resources.",
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

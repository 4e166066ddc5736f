// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/identity-api/internal/core"
)

type stubVerifier struct {
	claims *TokenClaims
	err    error
}

func (s *stubVerifier) DecodeAccessToken(string) (*TokenClaims, error) {
	return s.claims, s.err
}

type stubLedger struct {
	revoked bool
	err     error
}

func (s *stubLedger) IsRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

type stubLoader struct {
	identity *Identity
	err      error
}

func (s *stubLoader) LoadIdentity(context.Context, string) (*Identity, error) {
	return s.identity, s.err
}

func okVerifier(userID string) *stubVerifier {
	return &stubVerifier{claims: &TokenClaims{
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}}
}

func okLoader(userID string) *stubLoader {
	return &stubLoader{identity: &Identity{
		ID:    userID,
		Email: "jane@example.com",
		Role:  RoleUser,
	}}
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) core.Envelope {
	t.Helper()

	var env core.Envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func authGet(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthenticator_MissingToken(t *testing.T) {
	t.Parallel()

	gate := Authenticator(okVerifier("u1"), &stubLedger{}, okLoader("u1"))
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authGet(""))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.False(t, env.Success)
	assert.Equal(t, "Access denied. No token provided.", env.Message)
}

func TestAuthenticator_RevokedTokenBeatsValidSignature(t *testing.T) {
	t.Parallel()

	// Verifier would accept the token; the ledger must win anyway.
	gate := Authenticator(
		okVerifier("u1"),
		&stubLedger{revoked: true},
		okLoader("u1"),
	)
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authGet("some-token"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(
		t,
		"Token has been invalidated. Please login again.",
		env.Message,
	)
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	t.Parallel()

	gate := Authenticator(
		&stubVerifier{err: core.ErrTokenExpired},
		&stubLedger{},
		okLoader("u1"),
	)
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authGet("expired-token"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticator_UnknownUser(t *testing.T) {
	t.Parallel()

	gate := Authenticator(
		okVerifier("u1"),
		&stubLedger{},
		&stubLoader{err: core.ErrNotFound},
	)
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authGet("valid-token"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Invalid token or user not found.", env.Message)
}

func TestAuthenticator_LedgerFailure(t *testing.T) {
	t.Parallel()

	gate := Authenticator(
		okVerifier("u1"),
		&stubLedger{err: errors.New("db down")},
		okLoader("u1"),
	)
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authGet("some-token"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAuthenticator_Success(t *testing.T) {
	t.Parallel()

	gate := Authenticator(okVerifier("u1"), &stubLedger{}, okLoader("u1"))

	var gotIdentity *Identity
	var gotToken string
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = GetIdentity(r.Context())
		gotToken = GetToken(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authGet("the-token"))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotIdentity)
	assert.Equal(t, "u1", gotIdentity.ID)
	assert.Equal(t, "the-token", gotToken)
}

func TestOptionalAuth_InvalidTokenFallsThrough(t *testing.T) {
	t.Parallel()

	gate := OptionalAuth(
		&stubVerifier{err: core.ErrTokenInvalid},
		&stubLedger{},
		okLoader("u1"),
	)

	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, GetIdentity(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authGet("garbage"))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestExtractToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", ""},
		{"bearer token", "Bearer abc123", "abc123"},
		{"lowercase scheme rejected", "bearer abc123", ""},
		{"uppercase scheme rejected", "BEARER abc123", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"scheme only", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(req))
		})
	}
}

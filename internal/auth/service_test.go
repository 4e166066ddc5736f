// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/identity-api/internal/core"
)

// --- Mock revocation ledger ---

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Record(ctx context.Context, entry *BlacklistedToken) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockLedger) IsRevoked(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock user provider ---

type mockUserProvider struct {
	mock.Mock
}

func (m *mockUserProvider) GetByEmail(ctx context.Context, email string) (*UserInfo, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserInfo), args.Error(1)
}

func (m *mockUserProvider) GetByID(ctx context.Context, id string) (*UserInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserInfo), args.Error(1)
}

func (m *mockUserProvider) CreateUnverified(ctx context.Context, input NewUserInput) (*UserInfo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserInfo), args.Error(1)
}

func (m *mockUserProvider) MarkLogin(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockUserProvider) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *mockUserProvider) SetVerificationToken(ctx context.Context, userID, token string, expires time.Time) error {
	args := m.Called(ctx, userID, token, expires)
	return args.Error(0)
}

func (m *mockUserProvider) ConsumeVerificationToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockUserProvider) SetResetToken(ctx context.Context, userID, token string, expires time.Time) error {
	args := m.Called(ctx, userID, token, expires)
	return args.Error(0)
}

func (m *mockUserProvider) ConsumeResetToken(ctx context.Context, token, passwordHash string) error {
	args := m.Called(ctx, token, passwordHash)
	return args.Error(0)
}

// --- Mock mailer ---

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	args := m.Called(ctx, to, name, token)
	return args.Error(0)
}

func (m *mockMailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	args := m.Called(ctx, to, name, token)
	return args.Error(0)
}

func newTestService(
	t *testing.T,
) (*Service, *mockLedger, *mockUserProvider, *mockMailer) {
	t.Helper()

	tokens, err := NewTokenService(testJWTConfig())
	require.NoError(t, err)

	ledger := &mockLedger{}
	users := &mockUserProvider{}
	mailer := &mockMailer{}

	svc := NewService(ledger, tokens, users, mailer, testJWTConfig())
	return svc, ledger, users, mailer
}

func testUserInfo(t *testing.T, password string) *UserInfo {
	t.Helper()

	hash, err := core.HashPassword(password)
	require.NoError(t, err)

	return &UserInfo{
		ID:           "b6f0e9c0-9a23-4a9e-8f6c-1d2e3f4a5b6c",
		Email:        "jane@example.com",
		FirstName:    "Jane",
		LastName:     "Doe",
		Role:         "user",
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
}

func TestRegister_IssuesDecodableToken(t *testing.T) {
	t.Parallel()

	svc, _, users, mailer := newTestService(t)
	user := testUserInfo(t, "my-password")

	users.On("CreateUnverified", mock.Anything, mock.MatchedBy(func(input NewUserInput) bool {
		return input.Email == "jane@example.com" &&
			input.PasswordHash != "my-password" &&
			len(input.VerificationToken) == 64 &&
			input.VerificationExpires.After(time.Now().Add(23*time.Hour))
	})).Return(user, nil)
	mailer.On("SendVerificationEmail", mock.Anything, "jane@example.com", "Jane", mock.Anything).
		Return(nil)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "jane@example.com",
		Password:  "my-password",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := svc.tokens.DecodeAccessToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	users.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, users, _ := newTestService(t)

	users.On("CreateUnverified", mock.Anything, mock.Anything).
		Return(nil, core.ErrDuplicateKey)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "jane@example.com",
		Password:  "my-password",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_EmailFailureDoesNotFailRegistration(t *testing.T) {
	t.Parallel()

	svc, _, users, mailer := newTestService(t)
	user := testUserInfo(t, "my-password")

	users.On("CreateUnverified", mock.Anything, mock.Anything).Return(user, nil)
	mailer.On("SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "jane@example.com",
		Password:  "my-password",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	svc, _, users, _ := newTestService(t)
	user := testUserInfo(t, "my-password")

	users.On("GetByEmail", mock.Anything, "jane@example.com").Return(user, nil)
	users.On("MarkLogin", mock.Anything, user.ID).Return(nil)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "jane@example.com",
		Password: "my-password",
	})
	require.NoError(t, err)

	claims, err := svc.tokens.DecodeAccessToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	users.AssertCalled(t, "MarkLogin", mock.Anything, user.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, _, users, _ := newTestService(t)
	user := testUserInfo(t, "my-password")

	users.On("GetByEmail", mock.Anything, "jane@example.com").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail_SameErrorAsWrongPassword(t *testing.T) {
	t.Parallel()

	svc, _, users, _ := newTestService(t)

	users.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, core.ErrNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEmail_InvalidToken(t *testing.T) {
	t.Parallel()

	svc, _, users, _ := newTestService(t)

	users.On("ConsumeVerificationToken", mock.Anything, "deadbeef").
		Return(core.ErrNotFound)

	err := svc.VerifyEmail(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestForgotPassword_UnknownEmailSucceeds(t *testing.T) {
	t.Parallel()

	svc, _, users, mailer := newTestService(t)

	users.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, core.ErrNotFound)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.NoError(t, err)

	users.AssertNotCalled(
		t,
		"SetResetToken",
		mock.Anything,
		mock.Anything,
		mock.Anything,
		mock.Anything,
	)
	mailer.AssertNotCalled(
		t,
		"SendPasswordResetEmail",
		mock.Anything,
		mock.Anything,
		mock.Anything,
		mock.Anything,
	)
}

func TestForgotPassword_KnownEmailSendsReset(t *testing.T) {
	t.Parallel()

	svc, _, users, mailer := newTestService(t)
	user := testUserInfo(t, "my-password")

	users.On("GetByEmail", mock.Anything, "jane@example.com").Return(user, nil)
	users.On("SetResetToken", mock.Anything, user.ID, mock.Anything, mock.Anything).
		Return(nil)
	mailer.On("SendPasswordResetEmail", mock.Anything, user.Email, user.FirstName, mock.Anything).
		Return(nil)

	err := svc.ForgotPassword(context.Background(), "jane@example.com")
	require.NoError(t, err)

	users.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	t.Parallel()

	svc, _, users, _ := newTestService(t)

	users.On("ConsumeResetToken", mock.Anything, "deadbeef", mock.Anything).
		Return(core.ErrNotFound)

	err := svc.ResetPassword(context.Background(), "deadbeef", "new-password")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	t.Parallel()

	svc, _, users, _ := newTestService(t)
	user := testUserInfo(t, "current-password")

	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	err := svc.ChangePassword(
		context.Background(),
		user.ID,
		"not-the-password",
		"new-password",
	)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users.AssertNotCalled(
		t,
		"UpdatePassword",
		mock.Anything,
		mock.Anything,
		mock.Anything,
	)
}

func TestLogout_RecordsExactTokenWithOwnExpiry(t *testing.T) {
	t.Parallel()

	svc, ledger, _, _ := newTestService(t)

	token, expiresAt, err := svc.tokens.CreateAccessToken("user-123")
	require.NoError(t, err)

	ledger.On("Record", mock.Anything, mock.MatchedBy(func(entry *BlacklistedToken) bool {
		return entry.Token == token &&
			entry.UserID == "user-123" &&
			entry.Reason == "logout" &&
			entry.ExpiresAt.Sub(expiresAt).Abs() < time.Second
	})).Return(nil)

	err = svc.Logout(context.Background(), token, "user-123")
	require.NoError(t, err)

	ledger.AssertExpectations(t)
}

func TestLogout_AlreadyRecorded(t *testing.T) {
	t.Parallel()

	svc, ledger, _, _ := newTestService(t)

	token, _, err := svc.tokens.CreateAccessToken("user-123")
	require.NoError(t, err)

	ledger.On("Record", mock.Anything, mock.Anything).
		Return(core.ErrDuplicateKey)

	err = svc.Logout(context.Background(), token, "user-123")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	t.Parallel()

	svc, _, users, mailer := newTestService(t)
	user := testUserInfo(t, "my-password")
	user.IsEmailVerified = true

	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	err := svc.ResendVerification(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrAlreadyVerified)

	mailer.AssertNotCalled(
		t,
		"SendVerificationEmail",
		mock.Anything,
		mock.Anything,
		mock.Anything,
		mock.Anything,
	)
}

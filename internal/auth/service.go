// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/identity-api/internal/config"
	"github.com/angelamos/identity-api/internal/core"
	"github.com/angelamos/identity-api/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrAlreadyVerified    = errors.New("email already verified")
)

type UserInfo struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	Role            string
	IsEmailVerified bool
	PasswordHash    string
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type NewUserInput struct {
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	VerificationToken   string
	VerificationExpires time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	CreateUnverified(ctx context.Context, input NewUserInput) (*UserInfo, error)
	MarkLogin(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetVerificationToken(
		ctx context.Context,
		userID, token string,
		expires time.Time,
	) error
	ConsumeVerificationToken(ctx context.Context, token string) error
	SetResetToken(
		ctx context.Context,
		userID, token string,
		expires time.Time,
	) error
	ConsumeResetToken(ctx context.Context, token, passwordHash string) error
}

type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

type Service struct {
	ledger Repository
	tokens *TokenService
	users  UserProvider
	mailer Mailer
	config config.JWTConfig
}

func NewService(
	ledger Repository,
	tokens *TokenService,
	users UserProvider,
	mailer Mailer,
	cfg config.JWTConfig,
) *Service {
	return &Service{
		ledger: ledger,
		tokens: tokens,
		users:  users,
		mailer: mailer,
		config: cfg,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	verificationToken, err := core.GenerateOneTimeToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	user, err := s.users.CreateUnverified(ctx, NewUserInput{
		Email:               req.Email,
		PasswordHash:        passwordHash,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		VerificationToken:   verificationToken,
		VerificationExpires: time.Now().Add(s.config.VerificationTTL),
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Registration already succeeded; a failed send only costs the user a
	// resend, so it must not fail the request.
	if mailErr := s.mailer.SendVerificationEmail(
		ctx,
		user.Email,
		user.FirstName,
		verificationToken,
	); mailErr != nil {
		slog.Warn("send verification email failed",
			"user_id", user.ID,
			"error", mailErr,
		)
	}

	return s.createAuthResponse(user)
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	//nolint:errcheck // best-effort login timestamp
	_ = s.users.MarkLogin(ctx, user.ID)

	return s.createAuthResponse(user)
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if err := s.users.ConsumeVerificationToken(ctx, token); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("verify email: %w", core.ErrTokenInvalid)
		}
		return fmt.Errorf("verify email: %w", err)
	}

	return nil
}

func (s *Service) ResendVerification(
	ctx context.Context,
	userID string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	token, err := core.GenerateOneTimeToken()
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}

	expires := time.Now().Add(s.config.VerificationTTL)
	if err := s.users.SetVerificationToken(ctx, user.ID, token, expires); err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}

	if err := s.mailer.SendVerificationEmail(
		ctx,
		user.Email,
		user.FirstName,
		token,
	); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	return nil
}

// ForgotPassword deliberately reports success for unknown emails. The
// caller-visible outcome must not disclose whether an account exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, err := core.GenerateOneTimeToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expires := time.Now().Add(s.config.PasswordResetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(
		ctx,
		user.Email,
		user.FirstName,
		token,
	); err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}

	return nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	token, newPassword string,
) error {
	passwordHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.ConsumeResetToken(ctx, token, passwordHash); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("reset password: %w", core.ErrTokenInvalid)
		}
		return fmt.Errorf("reset password: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// Logout records the exact presented token in the revocation ledger. The
// ledger row inherits the token's own expiry, so it stops matching exactly
// when the signature would stop verifying anyway.
func (s *Service) Logout(ctx context.Context, token, userID string) error {
	claims, err := s.tokens.DecodeAccessToken(token)
	if err != nil {
		return fmt.Errorf("decode token: %w", err)
	}

	entry := &BlacklistedToken{
		ID:        uuid.New().String(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt,
		Reason:    "logout",
	}

	if err := s.ledger.Record(ctx, entry); err != nil {
		return fmt.Errorf("record logout: %w", err)
	}

	return nil
}

func (s *Service) IsRevoked(
	ctx context.Context,
	token string,
) (bool, error) {
	return s.ledger.IsRevoked(ctx, token)
}

func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.ledger.PurgeExpired(ctx)
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserPayload, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload := toUserPayload(user)
	return &payload, nil
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.CreateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		User:      toUserPayload(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

var _ middleware.RevocationChecker = (*Service)(nil)

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rachit-21/chatwave/internal/auth"
	"github.com/rachit-21/chatwave/internal/models"
	"github.com/rachit-21/chatwave/internal/repository"
	"go.uber.org/zap"
)

const minPasswordLength = 6

// AuthService orchestrates the credential lifecycle: registration, login,
// token rotation, email verification, and the two password-change paths.
// It owns every side-effecting token decision; the repository just stores
// what it is told.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	oneTimeTTL time.Duration
	logger     *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenManager,
	bcryptCost int,
	oneTimeTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		oneTimeTTL: oneTimeTTL,
		logger:     logger,
	}
}

// TokenPair is what login and refresh hand back to the transport layer.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates an unverified user and returns it together with the
// plaintext verification token. Delivering that token (email) is a
// boundary to an external notifier; this service only mints it.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	existing, err := s.users.FindByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, "", fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		s.logger.Warn("registration for taken identity", zap.String("username", username))
		return nil, "", ErrUserExists
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, hash, models.RoleUser)
	if err != nil {
		// The unique indexes catch the race where two registrations for
		// the same identity pass the lookup above.
		if err == repository.ErrDuplicate {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	verification, err := auth.NewOneTimeToken(s.oneTimeTTL)
	if err != nil {
		return nil, "", fmt.Errorf("generate verification token: %w", err)
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, verification.Hash, verification.ExpiresAt); err != nil {
		return nil, "", fmt.Errorf("store verification token: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, verification.Plain, nil
}

// Login accepts either email or username as the identifier. Lookup miss
// and password mismatch produce the same error so the response never
// reveals which identities exist.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, *TokenPair, error) {
	user, err := s.users.FindByEmailOrUsername(ctx, identifier, identifier)
	if err != nil {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		s.logger.Warn("failed login attempt", zap.String("identifier", identifier))
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return user, pair, nil
}

// Logout clears the stored refresh token. Clearing an already-empty token
// is not an error.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	s.logger.Info("user logged out", zap.String("user_id", userID.String()))
	return nil
}

// RefreshAccessToken rotates on every use: the incoming token must match
// the stored value exactly, and succeeding replaces that value, so a
// refresh token is single-use. Replaying a rotated-away token fails.
func (s *AuthService) RefreshAccessToken(ctx context.Context, incoming string) (*models.User, *TokenPair, error) {
	if incoming == "" {
		return nil, nil, ErrUnauthorized
	}

	user, err := s.users.FindByRefreshToken(ctx, incoming)
	if err != nil {
		return nil, nil, fmt.Errorf("find user by refresh token: %w", err)
	}
	if user == nil {
		s.logger.Warn("refresh with unknown or revoked token")
		return nil, nil, ErrUnauthorized
	}

	if _, err := s.tokens.ParseRefreshToken(incoming); err != nil {
		s.logger.Warn("refresh token failed verification", zap.String("user_id", user.ID.String()))
		return nil, nil, ErrUnauthorized
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("access token refreshed", zap.String("user_id", user.ID.String()))
	return user, pair, nil
}

// VerifyEmail matches the presented token's hash against a stored,
// non-expired verification hash, then flips the flag and clears the token.
func (s *AuthService) VerifyEmail(ctx context.Context, plainToken string) error {
	if plainToken == "" {
		return fmt.Errorf("%w: verification token missing", ErrValidation)
	}

	user, err := s.users.FindByVerificationTokenHash(ctx, auth.HashOneTimeToken(plainToken))
	if err != nil {
		return fmt.Errorf("find user by verification token: %w", err)
	}
	if user == nil {
		s.logger.Warn("invalid or expired email verification token")
		return ErrInvalidToken
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	s.logger.Info("email verified", zap.String("user_id", user.ID.String()))
	return nil
}

// ForgotPassword returns the plaintext reset token for out-of-band
// delivery. An unknown email yields an empty token and no error, so the
// response shape never confirms whether an account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmailOrUsername(ctx, email, "")
	if err != nil {
		return "", fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		s.logger.Warn("password reset requested for unknown email")
		return "", nil
	}

	reset, err := auth.NewOneTimeToken(s.oneTimeTTL)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, reset.Hash, reset.ExpiresAt); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	s.logger.Info("password reset token issued", zap.String("user_id", user.ID.String()))
	return reset.Plain, nil
}

// ResetForgottenPassword replaces the password and, through the
// repository's single update, clears the reset token and the refresh
// token, so every existing session is forced to log in again.
func (s *AuthService) ResetForgottenPassword(ctx context.Context, plainToken, newPassword string) error {
	if plainToken == "" {
		return fmt.Errorf("%w: reset token missing", ErrValidation)
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	user, err := s.users.FindByResetTokenHash(ctx, auth.HashOneTimeToken(plainToken))
	if err != nil {
		return fmt.Errorf("find user by reset token: %w", err)
	}
	if user == nil {
		s.logger.Warn("invalid or expired password reset token")
		return ErrInvalidToken
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password reset", zap.String("user_id", user.ID.String()))
	return nil
}

// ChangeCurrentPassword is the logged-in variant. It carries the same
// session-invalidation invariant as reset.
func (s *AuthService) ChangeCurrentPassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}
	if !auth.CheckPassword(oldPassword, user.PasswordHash) {
		s.logger.Warn("change password with wrong old password", zap.String("user_id", userID.String()))
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password changed", zap.String("user_id", userID.String()))
	return nil
}

// GetUser resolves an identity for authenticated callers.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	// Persisting the new refresh token is what invalidates the old one.
	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

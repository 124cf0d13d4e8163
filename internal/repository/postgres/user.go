package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rachit-21/chatwave/internal/models"
	"github.com/rachit-21/chatwave/internal/repository"
)

const userColumns = `id, username, email, password_hash, role, is_email_verified,
		refresh_token, email_verification_token_hash, email_verification_token_expiry,
		password_reset_token_hash, password_reset_token_expiry, created_at, updated_at`

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsEmailVerified,
		&u.RefreshToken,
		&u.EmailVerificationTokenHash,
		&u.EmailVerificationTokenExpiry,
		&u.PasswordResetTokenHash,
		&u.PasswordResetTokenExpiry,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, username, email, passwordHash, role string) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, now(), now())
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, query,
		strings.ToLower(username), strings.ToLower(email), passwordHash, role))
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation on username or email.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 OR username = $2`

	u, err := scanUser(s.pool.QueryRow(ctx, query, strings.ToLower(email), strings.ToLower(username)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email or username: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE refresh_token = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by refresh token: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindByVerificationTokenHash(ctx context.Context, hash string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email_verification_token_hash = $1
		  AND email_verification_token_expiry > now()`

	u, err := scanUser(s.pool.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by verification token: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE password_reset_token_hash = $1
		  AND password_reset_token_expiry > now()`

	u, err := scanUser(s.pool.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by reset token: %w", err)
	}
	return u, nil
}

func (s *UserStore) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	query := `
		UPDATE users
		SET refresh_token = $2, updated_at = now()
		WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, id, token); err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	return nil
}

func (s *UserStore) SetVerificationToken(ctx context.Context, id uuid.UUID, hash string, expiry time.Time) error {
	query := `
		UPDATE users
		SET email_verification_token_hash = $2,
		    email_verification_token_expiry = $3,
		    updated_at = now()
		WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, id, hash, expiry); err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	return nil
}

func (s *UserStore) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET is_email_verified = true,
		    email_verification_token_hash = NULL,
		    email_verification_token_expiry = NULL,
		    updated_at = now()
		WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	return nil
}

func (s *UserStore) SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiry time.Time) error {
	query := `
		UPDATE users
		SET password_reset_token_hash = $2,
		    password_reset_token_expiry = $3,
		    updated_at = now()
		WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, id, hash, expiry); err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return nil
}

// UpdatePassword replaces the hash and revokes every session artifact in
// one atomic statement: the reset token pair and the refresh token all go.
func (s *UserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2,
		    password_reset_token_hash = NULL,
		    password_reset_token_expiry = NULL,
		    refresh_token = NULL,
		    updated_at = now()
		WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, id, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

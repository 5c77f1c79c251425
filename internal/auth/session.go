package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrSessionNotFound = errors.New("session not found or expired")

type Session struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	TokenHash string    `db:"token_hash" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SessionUser is a session row joined to the owning user, as resolved during
// token verification.
type SessionUser struct {
	UserID   int    `db:"user_id" json:"user_id"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"full_name"`
	Role     string `db:"role" json:"role"`
}

type SessionRepository interface {
	CreateSession(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) (*Session, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*SessionUser, error)
	Invalidate(ctx context.Context, tokenHash string) error
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) CreateSession(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) (*Session, error) {
	query := `
		INSERT INTO sessions (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, token_hash, expires_at, created_at
	`

	var session Session
	err := r.db.GetContext(ctx, &session, query, userID, tokenHash, expiresAt)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*SessionUser, error) {
	query := `
		SELECT s.user_id, u.email, u.full_name, u.role
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token_hash = $1 AND s.expires_at > NOW()
	`

	var su SessionUser
	err := r.db.GetContext(ctx, &su, query, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &su, nil
}

// Invalidate expires the matching session. Expiring an unknown or already
// expired token is not an error, logout stays idempotent.
func (r *sessionRepository) Invalidate(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET expires_at = NOW() WHERE token_hash = $1`, tokenHash)
	return err
}

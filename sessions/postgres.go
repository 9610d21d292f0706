package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/forumgate/forumgate/internal/dbx"
)

var _ Repo = (*PostgresRepo)(nil)

type PostgresRepo struct {
	db dbx.DBTX
}

func NewPostgresRepo(db dbx.DBTX) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Insert(ctx context.Context, session *Session) error {
	query := `INSERT INTO sessions (id, user_id, expires_at, lifetime_seconds)
	          VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.ExpiresAt, int64(session.Lifetime/time.Second))
	if err != nil {
		return fmt.Errorf("sessions insert: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Session, error) {
	query := `SELECT id, user_id, expires_at, lifetime_seconds FROM sessions
	          WHERE id = $1`

	session := &Session{}
	var lifetimeSeconds int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.UserID, &session.ExpiresAt, &lifetimeSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sessions get: %w", err)
	}
	session.Lifetime = time.Duration(lifetimeSeconds) * time.Second
	return session, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("sessions delete: %w", err)
	}
	return nil
}

func (r *PostgresRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("sessions delete for user: %w", err)
	}
	return nil
}

func (r *PostgresRepo) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	query := `UPDATE sessions SET expires_at = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, expiresAt); err != nil {
		return fmt.Errorf("sessions update expiry: %w", err)
	}
	return nil
}

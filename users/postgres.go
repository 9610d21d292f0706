package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/forumgate/forumgate/internal/dbx"
)

var _ Repo = (*PostgresRepo)(nil)

type PostgresRepo struct {
	db dbx.DBTX
}

func NewPostgresRepo(db dbx.DBTX) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const userColumns = `id, username, email, password_hash, role, avatar, created_at, updated_at`

func (r *PostgresRepo) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE username = $1 OR email = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, identifier))
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepo) Insert(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, username, email, password_hash, role, avatar)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.Avatar,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("users insert: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("users delete: %w", err)
	}
	return nil
}

func (r *PostgresRepo) scanOne(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.Avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users query: %w", err)
	}
	return user, nil
}

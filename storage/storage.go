// Package storage opens the Postgres connection pool, runs migrations, and
// hands out the concrete repositories. The returned Store is the one scoped
// resource the process owns: open it at startup, close it at shutdown.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/forumgate/forumgate/forum"
	"github.com/forumgate/forumgate/sessions"
	"github.com/forumgate/forumgate/storage/migrations"
	"github.com/forumgate/forumgate/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type Store struct {
	db       *sql.DB
	users    *users.PostgresRepo
	sessions *sessions.PostgresRepo
	forum    *forum.PostgresRepo
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage open: %w", err)
	}

	return &Store{
		db:       db,
		users:    users.NewPostgresRepo(db),
		sessions: sessions.NewPostgresRepo(db),
		forum:    forum.NewPostgresRepo(db),
	}, nil
}

func (s *Store) Users() users.Repo {
	return s.users
}

func (s *Store) Sessions() sessions.Repo {
	return s.sessions
}

func (s *Store) Forum() forum.Repo {
	return s.forum
}

func (s *Store) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("storage migrations dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("storage migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

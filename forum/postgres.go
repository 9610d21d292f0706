package forum

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var _ Repo = (*PostgresRepo)(nil)

// PostgresRepo needs the *sql.DB rather than a plain query interface because
// thread and post creation span multiple rows and run inside transactions.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const (
	threadColumns = `id, title, slug, content, group_id, author_id,
	                 is_pinned, is_locked, is_deleted,
	                 post_count, view_count, last_post_id, last_post_at, last_post_author_id,
	                 created_at, updated_at`
	postColumns = `id, content, thread_id, author_id, parent_post_id,
	               is_deleted, is_edited, edited_at, created_at, updated_at`
)

func (r *PostgresRepo) ListGroups(ctx context.Context) ([]*Group, error) {
	query := `SELECT id, name, description, slug, owner_id, is_active, sort_order, created_at, updated_at
	          FROM forum_groups
	          WHERE is_active = true
	          ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("forum list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		g := &Group{}
		var description sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &description, &g.Slug, &g.OwnerID,
			&g.IsActive, &g.SortOrder, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("forum scan group: %w", err)
		}
		g.Description = description.String
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *PostgresRepo) GetGroupBySlug(ctx context.Context, slug string) (*Group, error) {
	query := `SELECT id, name, description, slug, owner_id, is_active, sort_order, created_at, updated_at
	          FROM forum_groups
	          WHERE slug = $1`

	g := &Group{}
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&g.ID, &g.Name, &description, &g.Slug,
		&g.OwnerID, &g.IsActive, &g.SortOrder, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("forum get group: %w", err)
	}
	g.Description = description.String
	return g, nil
}

func (r *PostgresRepo) ListThreads(ctx context.Context, groupID string, page, limit int) ([]*Thread, error) {
	query := `SELECT ` + threadColumns + `
	          FROM forum_threads
	          WHERE group_id = $1 AND is_deleted = false
	          ORDER BY is_pinned DESC, last_post_at DESC NULLS LAST
	          LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, pageOffset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("forum list threads: %w", err)
	}
	defer rows.Close()

	var threads []*Thread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

func (r *PostgresRepo) GetThread(ctx context.Context, id string) (*Thread, error) {
	query := `SELECT ` + threadColumns + ` FROM forum_threads WHERE id = $1`

	t, err := scanThread(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepo) ListPosts(ctx context.Context, threadID string, page, limit int) ([]*Post, error) {
	query := `SELECT ` + postColumns + `
	          FROM forum_posts
	          WHERE thread_id = $1 AND is_deleted = false
	          ORDER BY created_at
	          LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, threadID, limit, pageOffset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("forum list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostgresRepo) CreateThread(ctx context.Context, in NewThread) (*Thread, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("forum create thread begin: %w", err)
	}
	defer tx.Rollback()

	threadID := uuid.New().String()
	thread := &Thread{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO forum_threads (id, title, slug, content, group_id, author_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		threadID, in.Title, in.Slug, in.Content, in.GroupID, in.AuthorID,
	).Scan(&thread.CreatedAt, &thread.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("forum insert thread: %w", err)
	}

	postID := uuid.New().String()
	var postCreatedAt sql.NullTime
	err = tx.QueryRowContext(ctx,
		`INSERT INTO forum_posts (id, content, thread_id, author_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		postID, in.Content, threadID, in.AuthorID,
	).Scan(&postCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("forum insert first post: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE forum_threads
		 SET last_post_id = $2, last_post_at = $3, last_post_author_id = $4, post_count = 1
		 WHERE id = $1`,
		threadID, postID, postCreatedAt.Time, in.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("forum update thread activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("forum create thread commit: %w", err)
	}

	thread.ID = threadID
	thread.Title = in.Title
	thread.Slug = in.Slug
	thread.Content = in.Content
	thread.GroupID = in.GroupID
	thread.AuthorID = in.AuthorID
	thread.PostCount = 1
	thread.LastPostID = postID
	thread.LastPostAt = &postCreatedAt.Time
	thread.LastPostAuthorID = in.AuthorID
	return thread, nil
}

func (r *PostgresRepo) CreatePost(ctx context.Context, in NewPost) (*Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("forum create post begin: %w", err)
	}
	defer tx.Rollback()

	var locked bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_locked FROM forum_threads WHERE id = $1 AND is_deleted = false`,
		in.ThreadID,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("forum check thread: %w", err)
	}
	if locked {
		return nil, ErrThreadLocked
	}

	post := &Post{
		ID:           uuid.New().String(),
		Content:      in.Content,
		ThreadID:     in.ThreadID,
		AuthorID:     in.AuthorID,
		ParentPostID: in.ParentPostID,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO forum_posts (id, content, thread_id, author_id, parent_post_id)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 RETURNING created_at, updated_at`,
		post.ID, post.Content, post.ThreadID, post.AuthorID, post.ParentPostID,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("forum insert post: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE forum_threads
		 SET last_post_id = $2, last_post_at = $3, last_post_author_id = $4,
		     post_count = post_count + 1
		 WHERE id = $1`,
		in.ThreadID, post.ID, post.CreatedAt, post.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("forum update thread activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("forum create post commit: %w", err)
	}
	return post, nil
}

func (r *PostgresRepo) SetThreadLocked(ctx context.Context, id string, locked bool) error {
	query := `UPDATE forum_threads SET is_locked = $2, updated_at = now()
	          WHERE id = $1 AND is_deleted = false`

	result, err := r.db.ExecContext(ctx, query, id, locked)
	if err != nil {
		return fmt.Errorf("forum set thread locked: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("forum set thread locked rows: %w", err)
	}
	if affected == 0 {
		return ErrThreadNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanThread(row scanner) (*Thread, error) {
	t := &Thread{}
	var lastPostID, lastPostAuthorID sql.NullString
	var lastPostAt sql.NullTime
	err := row.Scan(&t.ID, &t.Title, &t.Slug, &t.Content, &t.GroupID, &t.AuthorID,
		&t.IsPinned, &t.IsLocked, &t.IsDeleted,
		&t.PostCount, &t.ViewCount, &lastPostID, &lastPostAt, &lastPostAuthorID,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("forum scan thread: %w", err)
	}
	t.LastPostID = lastPostID.String
	t.LastPostAuthorID = lastPostAuthorID.String
	if lastPostAt.Valid {
		t.LastPostAt = &lastPostAt.Time
	}
	return t, nil
}

func scanPost(row scanner) (*Post, error) {
	p := &Post{}
	var parentPostID sql.NullString
	var editedAt sql.NullTime
	err := row.Scan(&p.ID, &p.Content, &p.ThreadID, &p.AuthorID, &parentPostID,
		&p.IsDeleted, &p.IsEdited, &editedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("forum scan post: %w", err)
	}
	p.ParentPostID = parentPostID.String
	if editedAt.Valid {
		p.EditedAt = &editedAt.Time
	}
	return p, nil
}

func pageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

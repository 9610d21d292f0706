package forum

import (
	"context"
	"errors"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrThreadNotFound = errors.New("thread not found")
	ErrThreadLocked   = errors.New("thread is locked")
)

type Repo interface {
	// ListGroups returns active groups ordered by sort order then name.
	ListGroups(ctx context.Context) ([]*Group, error)

	// GetGroupBySlug returns a group by its slug.
	GetGroupBySlug(ctx context.Context, slug string) (*Group, error)

	// ListThreads returns non-deleted threads in a group, pinned first then
	// by last activity, paginated.
	ListThreads(ctx context.Context, groupID string, page, limit int) ([]*Thread, error)

	// GetThread returns a thread by id.
	GetThread(ctx context.Context, id string) (*Thread, error)

	// ListPosts returns non-deleted posts in a thread in creation order,
	// paginated.
	ListPosts(ctx context.Context, threadID string, page, limit int) ([]*Post, error)

	// CreateThread creates a thread, its first post, and the thread's
	// activity fields in one atomic unit: all rows commit or none do.
	CreateThread(ctx context.Context, in NewThread) (*Thread, error)

	// CreatePost appends a post and updates the parent thread's last-post
	// and post-count fields in one atomic unit. Returns ErrThreadLocked
	// when the thread does not accept new posts.
	CreatePost(ctx context.Context, in NewPost) (*Post, error)

	// SetThreadLocked opens or closes a thread for new posts.
	SetThreadLocked(ctx context.Context, id string, locked bool) error
}

// Package forum holds the discussion entities: groups contain threads,
// threads contain posts. Thread rows carry denormalized last-post and
// post-count fields kept consistent transactionally by the repository.
package forum

import "time"

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Slug        string    `json:"slug"`
	OwnerID     string    `json:"owner_id"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Thread struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Content  string `json:"content"`
	GroupID  string `json:"group_id"`
	AuthorID string `json:"author_id"`

	IsPinned  bool `json:"is_pinned"`
	IsLocked  bool `json:"is_locked"`
	IsDeleted bool `json:"is_deleted"`

	// Denormalized activity fields, updated in the same transaction as the
	// post writes that change them.
	PostCount        int        `json:"post_count"`
	ViewCount        int        `json:"view_count"`
	LastPostID       string     `json:"last_post_id,omitempty"`
	LastPostAt       *time.Time `json:"last_post_at,omitempty"`
	LastPostAuthorID string     `json:"last_post_author_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Post struct {
	ID           string     `json:"id"`
	Content      string     `json:"content"`
	ThreadID     string     `json:"thread_id"`
	AuthorID     string     `json:"author_id"`
	ParentPostID string     `json:"parent_post_id,omitempty"`
	IsDeleted    bool       `json:"is_deleted"`
	IsEdited     bool       `json:"is_edited"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewThread is the input for creating a thread together with its first post.
type NewThread struct {
	Title    string
	Slug     string
	Content  string
	GroupID  string
	AuthorID string
}

// NewPost is the input for appending a post to a thread.
type NewPost struct {
	Content      string
	ThreadID     string
	AuthorID     string
	ParentPostID string
}

package fakeforumrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/forumgate/forumgate/forum"
	"github.com/google/uuid"
)

var _ forum.Repo = (*FakeForumRepo)(nil)

// FakeForumRepo is an in-memory forum.Repo for tests. Multi-row writes hold
// the lock for their whole duration, mirroring the transactional all-or-
// nothing behavior of the Postgres repository.
type FakeForumRepo struct {
	lock    sync.RWMutex
	groups  map[string]*forum.Group
	threads map[string]*forum.Thread
	posts   map[string]*forum.Post
	nowTime func() time.Time
}

func NewFakeForumRepo() *FakeForumRepo {
	return &FakeForumRepo{
		groups:  make(map[string]*forum.Group),
		threads: make(map[string]*forum.Thread),
		posts:   make(map[string]*forum.Post),
		nowTime: time.Now,
	}
}

// AddGroup seeds a group for tests.
func (fr *FakeForumRepo) AddGroup(group *forum.Group) {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	fr.groups[group.ID] = group
}

func (fr *FakeForumRepo) ListGroups(_ context.Context) ([]*forum.Group, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	var groups []*forum.Group
	for _, g := range fr.groups {
		if g.IsActive {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].SortOrder != groups[j].SortOrder {
			return groups[i].SortOrder < groups[j].SortOrder
		}
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

func (fr *FakeForumRepo) GetGroupBySlug(_ context.Context, slug string) (*forum.Group, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	for _, g := range fr.groups {
		if g.Slug == slug {
			return g, nil
		}
	}
	return nil, forum.ErrGroupNotFound
}

func (fr *FakeForumRepo) ListThreads(_ context.Context, groupID string, page, limit int) ([]*forum.Thread, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	var threads []*forum.Thread
	for _, t := range fr.threads {
		if t.GroupID == groupID && !t.IsDeleted {
			threads = append(threads, t)
		}
	}
	sort.Slice(threads, func(i, j int) bool {
		if threads[i].IsPinned != threads[j].IsPinned {
			return threads[i].IsPinned
		}
		return lastPost(threads[i]).After(lastPost(threads[j]))
	})
	return paginate(threads, page, limit), nil
}

func (fr *FakeForumRepo) GetThread(_ context.Context, id string) (*forum.Thread, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	t, ok := fr.threads[id]
	if !ok {
		return nil, forum.ErrThreadNotFound
	}
	return t, nil
}

func (fr *FakeForumRepo) ListPosts(_ context.Context, threadID string, page, limit int) ([]*forum.Post, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	var posts []*forum.Post
	for _, p := range fr.posts {
		if p.ThreadID == threadID && !p.IsDeleted {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})
	return paginate(posts, page, limit), nil
}

func (fr *FakeForumRepo) CreateThread(_ context.Context, in forum.NewThread) (*forum.Thread, error) {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	now := fr.nowTime()
	post := &forum.Post{
		ID:        uuid.New().String(),
		Content:   in.Content,
		AuthorID:  in.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	thread := &forum.Thread{
		ID:               uuid.New().String(),
		Title:            in.Title,
		Slug:             in.Slug,
		Content:          in.Content,
		GroupID:          in.GroupID,
		AuthorID:         in.AuthorID,
		PostCount:        1,
		LastPostID:       post.ID,
		LastPostAt:       &now,
		LastPostAuthorID: in.AuthorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	post.ThreadID = thread.ID

	fr.threads[thread.ID] = thread
	fr.posts[post.ID] = post
	return thread, nil
}

func (fr *FakeForumRepo) CreatePost(_ context.Context, in forum.NewPost) (*forum.Post, error) {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	thread, ok := fr.threads[in.ThreadID]
	if !ok || thread.IsDeleted {
		return nil, forum.ErrThreadNotFound
	}
	if thread.IsLocked {
		return nil, forum.ErrThreadLocked
	}

	now := fr.nowTime()
	post := &forum.Post{
		ID:           uuid.New().String(),
		Content:      in.Content,
		ThreadID:     in.ThreadID,
		AuthorID:     in.AuthorID,
		ParentPostID: in.ParentPostID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	fr.posts[post.ID] = post

	thread.PostCount++
	thread.LastPostID = post.ID
	thread.LastPostAt = &now
	thread.LastPostAuthorID = post.AuthorID
	return post, nil
}

func (fr *FakeForumRepo) SetThreadLocked(_ context.Context, id string, locked bool) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	thread, ok := fr.threads[id]
	if !ok || thread.IsDeleted {
		return forum.ErrThreadNotFound
	}
	thread.IsLocked = locked
	return nil
}

func lastPost(t *forum.Thread) time.Time {
	if t.LastPostAt != nil {
		return *t.LastPostAt
	}
	return t.CreatedAt
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

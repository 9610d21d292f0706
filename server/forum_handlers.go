package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/forumgate/forumgate/forum"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type createThreadRequest struct {
	GroupID string `json:"group_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type createPostRequest struct {
	Content      string `json:"content"`
	ParentPostID string `json:"parent_post_id,omitempty"`
}

type lockThreadRequest struct {
	Locked bool `json:"locked"`
}

// GroupsListHandler lists active groups (GET /api/forum/groups)
func (s *Server) GroupsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := s.forum.ListGroups(r.Context())
		if err != nil {
			writeForumError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
	}
}

// ThreadsListHandler lists threads in a group, pinned first
// (GET /api/forum/groups/{slug}/threads)
func (s *Server) ThreadsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group, err := s.forum.GetGroupBySlug(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeForumError(w, err)
			return
		}

		page, limit := pagination(r)
		threads, err := s.forum.ListThreads(r.Context(), group.ID, page, limit)
		if err != nil {
			writeForumError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"group": group, "threads": threads})
	}
}

// PostsListHandler lists posts in a thread in creation order
// (GET /api/forum/threads/{id}/posts)
func (s *Server) PostsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		thread, err := s.forum.GetThread(r.Context(), r.PathValue("id"))
		if err != nil {
			writeForumError(w, err)
			return
		}

		page, limit := pagination(r)
		posts, err := s.forum.ListPosts(r.Context(), thread.ID, page, limit)
		if err != nil {
			writeForumError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"thread": thread, "posts": posts})
	}
}

// ThreadCreateHandler creates a thread with its first post
// (POST /api/forum/threads, behind RequireSession)
func (s *Server) ThreadCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		var req createThreadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.GroupID == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
			writeError(w, http.StatusBadRequest, "Group, title, and content are required")
			return
		}

		thread, err := s.forum.CreateThread(r.Context(), forum.NewThread{
			Title:    req.Title,
			Slug:     slugify(req.Title),
			Content:  req.Content,
			GroupID:  req.GroupID,
			AuthorID: user.ID,
		})
		if err != nil {
			writeForumError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "thread": thread})
	}
}

// PostCreateHandler appends a post to a thread
// (POST /api/forum/threads/{id}/posts, behind RequireSession)
func (s *Server) PostCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		var req createPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			writeError(w, http.StatusBadRequest, "Content is required")
			return
		}

		post, err := s.forum.CreatePost(r.Context(), forum.NewPost{
			Content:      req.Content,
			ThreadID:     r.PathValue("id"),
			AuthorID:     user.ID,
			ParentPostID: req.ParentPostID,
		})
		if err != nil {
			writeForumError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "post": post})
	}
}

// ThreadLockHandler opens or closes a thread for new posts
// (POST /api/forum/threads/{id}/lock, behind RequireSession + RequireRole)
func (s *Server) ThreadLockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lockThreadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := s.forum.SetThreadLocked(r.Context(), r.PathValue("id"), req.Locked); err != nil {
			writeForumError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "locked": req.Locked})
	}
}

func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	slug := slugStripRe.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

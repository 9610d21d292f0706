package server

const (
	RouteAuthLogin    = "/api/auth/login"
	RouteAuthRegister = "/api/auth/register"
	RouteAuthLogout   = "/api/auth/logout"
	RouteAuthSession  = "/api/auth/session"

	RouteForumGroups       = "/api/forum/groups"
	RouteForumGroupThreads = "/api/forum/groups/{slug}/threads"
	RouteForumThreads      = "/api/forum/threads"
	RouteForumThreadPosts  = "/api/forum/threads/{id}/posts"
	RouteForumThreadLock   = "/api/forum/threads/{id}/lock"
)

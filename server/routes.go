package server

import "github.com/forumgate/forumgate/users"

func (s *Server) initRoutes() {
	// CORS preflight for the whole API subtree; method-qualified routes
	// never match OPTIONS, so preflights land here.
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))

	// FORUM reads are public
	s.RegisterRouteHandler("GET "+RouteForumGroups, ChainMiddleware(s.GroupsListHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteForumGroupThreads, ChainMiddleware(s.ThreadsListHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteForumThreadPosts, ChainMiddleware(s.PostsListHandler(), s.APIMiddleware()...))

	// FORUM writes require an authenticated principal; author identity comes
	// from the session, never from the request body.
	s.RegisterRouteHandler("POST "+RouteForumThreads,
		ChainMiddleware(s.ThreadCreateHandler(), append(s.APIMiddleware(), s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteForumThreadPosts,
		ChainMiddleware(s.PostCreateHandler(), append(s.APIMiddleware(), s.RequireSession())...))

	// MODERATION is admin-only
	s.RegisterRouteHandler("POST "+RouteForumThreadLock,
		ChainMiddleware(s.ThreadLockHandler(), append(s.APIMiddleware(), s.RequireSession(), s.RequireRole(users.RoleAdmin))...))
}

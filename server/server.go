package server

import (
	"fmt"
	"net/http"

	"github.com/forumgate/forumgate/auth"
	"github.com/forumgate/forumgate/forum"
	"github.com/forumgate/forumgate/internal/config"
	"github.com/forumgate/forumgate/sessions"
	"github.com/forumgate/forumgate/users"
	"github.com/rs/zerolog/log"
)

// Repos holds the persistence dependencies the server needs.
type Repos struct {
	Users    users.Repo
	Sessions sessions.Repo
	Forum    forum.Repo
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	auth   *auth.Service
	forum  forum.Repo
}

func New(config config.Config, repos Repos) (*Server, error) {
	sessionManager, err := sessions.NewManager(repos.Sessions, repos.Users)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session manager: %w", err)
	}

	codec := sessions.NewCookieCodec(config.GetSecureCookies())
	authService, err := auth.NewService(repos.Users, sessionManager, codec)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: config,
		auth:   authService,
		forum:  repos.Forum,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Info().Str("route", route).Msg("registered")
	}
}

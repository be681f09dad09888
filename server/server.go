package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/dottapps/auth-gateway/authflow"
	"github.com/dottapps/auth-gateway/bridgetoken"
	"github.com/dottapps/auth-gateway/internal/config"
	"github.com/dottapps/auth-gateway/sessionauth"
	"github.com/dottapps/auth-gateway/sessioncookie"
	"github.com/dottapps/auth-gateway/sessionstore"
)

// Server is the session-lifecycle gateway. All cross-request state
// lives in the backend store, the bridge/flow repos, and cookies; the
// server itself is stateless per request.
type Server struct {
	env    string // Environment (e.g., "DEV", "production")
	mux    *http.ServeMux
	routes []string
	config config.Config

	codec        *sessioncookie.Codec
	validator    *sessionauth.Validator
	store        sessionstore.Client
	bridgeTokens bridgetoken.Repo
	flowStates   authflow.Repo
	oauth        Exchanger
}

func New(
	cfg config.Config,
	store sessionstore.Client,
	bridgeTokens bridgetoken.Repo,
	flowStates authflow.Repo,
	oauth Exchanger,
) (*Server, error) {
	codec, err := sessioncookie.NewCodec(cfg.GetCookieSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create cookie codec: %w", err)
	}

	s := &Server{
		mux:          http.NewServeMux(),
		config:       cfg,
		codec:        codec,
		validator:    sessionauth.New(codec, store),
		store:        store,
		bridgeTokens: bridgeTokens,
		flowStates:   flowStates,
		oauth:        oauth,
	}
	s.env = cfg.GetEnv()

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
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	colour := methodColors[method]
	log.Printf("%s[%-7s]%s %s\n", colour, method, ResetColor, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

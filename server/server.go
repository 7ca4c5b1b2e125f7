package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-crm/auth"
	"github.com/jrsteele09/go-crm/crm"
	"github.com/jrsteele09/go-crm/internal/config"
	"github.com/rs/zerolog/log"
)

// CountCache fronts the count queries. The zero configuration uses no cache.
type CountCache interface {
	Count(ctx context.Context, name string, load func(context.Context) (int64, error)) (int64, error)
	Invalidate(ctx context.Context, name string) error
}

// Repos holds the CRM record stores the handlers read and write.
type Repos struct {
	Leads     crm.LeadRepo
	Employees crm.EmployeeRepo
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	accounts *auth.AccountService
	repos    Repos
	counts   CountCache
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithCountCache serves the count endpoints through cache.
func WithCountCache(cache CountCache) ServerOption {
	return func(s *Server) {
		s.counts = cache
	}
}

func New(config config.Config, accounts *auth.AccountService, repos Repos, options ...ServerOption) (*Server, error) {
	if accounts == nil {
		return nil, errors.New("[Server New] account service is required")
	}
	if repos.Leads == nil || repos.Employees == nil {
		return nil, errors.New("[Server New] leads and employees repos are required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		accounts: accounts,
		repos:    repos,
		counts:   noCountCache{},
	}
	s.env = config.GetEnv()
	for _, opt := range options {
		opt(s)
	}

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

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Msgf("[%s] %s", colourMethod(parts[0]), parts[1])
		} else {
			log.Debug().Msg(parts[0])
		}
	}
}

type noCountCache struct{}

func (noCountCache) Count(ctx context.Context, _ string, load func(context.Context) (int64, error)) (int64, error) {
	return load(ctx)
}

func (noCountCache) Invalidate(context.Context, string) error {
	return nil
}

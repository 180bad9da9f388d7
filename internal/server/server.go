package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"avtopology/internal/monitor"
	"avtopology/internal/network"
)

type Server struct {
	router     chi.Router
	net        *network.Network
	monitor    *monitor.Monitor
	corsOrigin string
}

func NewServer(n *network.Network, opts ...Option) *Server {
	srv := &Server{
		router: chi.NewRouter(),
		net:    n,
	}
	for _, o := range opts {
		o(srv)
	}
	srv.router.Use(middleware.Logger)
	srv.router.Use(middleware.Recoverer)
	srv.routes()
	srv.serveDashboard()
	return srv
}

type Option func(*Server)

func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

func WithMonitor(m *monitor.Monitor) Option {
	return func(s *Server) { s.monitor = m }
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

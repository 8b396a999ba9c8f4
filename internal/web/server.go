package web

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"fincal/internal/config"
	appLog "fincal/internal/log"
	"fincal/internal/navigator"
	"fincal/internal/store"
)

// Server exposes the calendar store and navigator over HTTP.
//
// The store is safe for concurrent use on its own; navMu serializes the
// navigator, which is not.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	router *mux.Router
	now    func() time.Time

	navMu sync.Mutex
	nav   *navigator.Navigator
}

// NewServer wires handlers around st and nav. now is used for "upcoming"
// queries and ICS timestamps; nil means time.Now.
func NewServer(cfg *config.Config, st *store.Store, nav *navigator.Navigator, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	s := &Server{
		cfg:    cfg,
		store:  st,
		nav:    nav,
		now:    now,
		router: mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, with basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled")
		return s.basicAuthMiddleware(h)
	}
	return h
}

// RefreshToday re-reads the clock for the navigator's cached today.
func (s *Server) RefreshToday() {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	s.nav.RefreshToday()
	appLog.Info("navigator today refreshed", "today", s.nav.Today().Format("2006-01-02"))
}

func (s *Server) registerRoutes() {
	r := s.router
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/view", s.handleView).Methods(http.MethodGet)
	api.HandleFunc("/view/next", s.handleNavigate((*navigator.Navigator).NextMonth)).Methods(http.MethodPost)
	api.HandleFunc("/view/prev", s.handleNavigate((*navigator.Navigator).PreviousMonth)).Methods(http.MethodPost)
	api.HandleFunc("/view/today", s.handleNavigate((*navigator.Navigator).GoToToday)).Methods(http.MethodPost)
	api.HandleFunc("/view/select", s.handleSelect).Methods(http.MethodPost)
	api.HandleFunc("/view/select", s.handleNavigate((*navigator.Navigator).ClearSelection)).Methods(http.MethodDelete)

	api.HandleFunc("/grid", s.handleGrid).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/upcoming", s.handleUpcoming).Methods(http.MethodGet)
	api.HandleFunc("/calendar.ics", s.handleExport).Methods(http.MethodGet)

	api.HandleFunc("/events", s.handleListEvents).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleCreateEvent).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}", s.handleGetEvent).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", s.handleUpdateEvent).Methods(http.MethodPatch)
	api.HandleFunc("/events/{id}", s.handleDeleteEvent).Methods(http.MethodDelete)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// view returns a navigator snapshot under the lock.
func (s *Server) view() navigator.View {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	return s.nav.Snapshot()
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware guards everything except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="fincal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

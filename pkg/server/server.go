// Package server exposes the skill registry over a read-only HTTP API so
// that external agent runtimes can list entries, fetch instruction bodies,
// and match task descriptions without shelling out to the CLI.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/skillworks/skillctl/pkg/logger"
	"github.com/skillworks/skillctl/pkg/registry"
	"github.com/skillworks/skillctl/pkg/router"
	"github.com/skillworks/skillctl/pkg/skill"
)

// Config holds the server configuration
type Config struct {
	Host string
	Port int
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// Server serves the registry over HTTP
type Server struct {
	config   *Config
	registry *registry.Registry
	router   *mux.Router
	server   *http.Server

	mu      sync.RWMutex
	cache   map[string]*skill.Skill
	watcher *fsnotify.Watcher
}

// New creates a Server backed by the given registry
func New(config *Config, reg *registry.Registry) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		config:   config,
		registry: reg,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	// OPTIONS is routed so the CORS middleware can answer preflight requests
	api.HandleFunc("/skills", s.handleListSkills).Methods("GET", "OPTIONS")
	api.HandleFunc("/match", s.handleMatch).Methods("GET", "OPTIONS")
	// Bundle skills carry org/repo/ prefixes, so the name may contain slashes
	api.HandleFunc("/skills/{name:.+}", s.handleGetSkill).Methods("GET", "OPTIONS")

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.corsMiddleware)
}

// Start begins serving and blocks until the server stops
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.G(ctx).WithField("addr", addr).Info("Starting skill registry server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "server failed")
	}
	return nil
}

// Stop gracefully shuts down the server and any directory watcher
func (s *Server) Stop(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Close()
	}
	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Watch invalidates the discovery cache whenever a watched directory
// changes. Missing directories are skipped.
func (s *Server) Watch(ctx context.Context, dirs ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	s.watcher = watcher

	watched := 0
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.G(ctx).WithError(err).WithField("dir", dir).Debug("Not watching directory")
			continue
		}
		watched++
	}
	logger.G(ctx).WithField("dirs", watched).Info("Watching skill directories for changes")

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					logger.G(ctx).WithField("path", event.Name).Debug("Skill directory changed, invalidating cache")
					s.invalidate()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.G(ctx).WithError(err).Warn("Watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (s *Server) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
}

// skills returns the discovered skills, served from cache when warm
func (s *Server) skills(ctx context.Context) map[string]*skill.Skill {
	s.mu.RLock()
	cached := s.cache
	s.mu.RUnlock()
	if cached != nil {
		return cached
	}

	discovered := s.registry.Discover(ctx)

	s.mu.Lock()
	s.cache = discovered
	s.mu.Unlock()
	return discovered
}

// SkillSummary is the JSON shape of a skill without its body
type SkillSummary struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	License       string            `json:"license,omitempty"`
	Compatibility string            `json:"compatibility,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Priority      string            `json:"priority"`
}

// SkillDetail adds the instruction body and bundle location
type SkillDetail struct {
	SkillSummary
	Directory string `json:"directory"`
	Content   string `json:"content"`
}

// MatchResult is one ranked match
type MatchResult struct {
	SkillSummary
	Score int `json:"score"`
}

func summarize(s *skill.Skill) SkillSummary {
	return SkillSummary{
		Name:          s.Name,
		Description:   s.Description,
		License:       s.License,
		Compatibility: s.Compatibility,
		Metadata:      s.Metadata,
		Priority:      s.Priority().String(),
	}
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	skills := s.skills(r.Context())

	summaries := make([]SkillSummary, 0, len(skills))
	for _, name := range skill.SortedNames(skills) {
		summaries = append(summaries, summarize(skills[name]))
	}

	writeJSON(r.Context(), w, http.StatusOK, summaries)
}

func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	entry, exists := s.skills(r.Context())[name]
	if !exists {
		writeError(r.Context(), w, http.StatusNotFound, fmt.Sprintf("skill '%s' not found", name))
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, SkillDetail{
		SkillSummary: summarize(entry),
		Directory:    entry.Directory,
		Content:      entry.Content,
	})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}

	results := router.Match(s.skills(r.Context()), query)

	matches := make([]MatchResult, 0, len(results))
	for _, res := range results {
		matches = append(matches, MatchResult{
			SkillSummary: summarize(res.Skill),
			Score:        res.Score,
		})
	}

	writeJSON(r.Context(), w, http.StatusOK, matches)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.G(ctx).WithError(err).Error("Failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, map[string]string{"error": message})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.G(r.Context()).WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("Handled request")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

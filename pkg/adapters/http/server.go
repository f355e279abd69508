package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sessions is the part of session.Manager the HTTP API depends on.
type Sessions interface {
	Config() *domain.Config
	Start(ctx context.Context, sessionID string) (*rewind.Machine, error)
	Load(ctx context.Context, sessionID string) (*rewind.Machine, error)
	Update(ctx context.Context, sessionID string, fn func(*rewind.Machine) error) (*rewind.Machine, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// Server exposes sessions over JSON/HTTP.
type Server struct {
	Sessions Sessions
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer mounts GET /metrics for the given registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// View is the JSON representation of a session.
type View struct {
	ID      string   `json:"id"`
	State   string   `json:"state"`
	History []string `json:"history"`
	Redo    []string `json:"redo"`
	CanUndo bool     `json:"can_undo"`
	CanRedo bool     `json:"can_redo"`
}

// NavigationResult is returned by undo and redo; OK is false when the
// operation had nothing to do.
type NavigationResult struct {
	OK bool `json:"ok"`
	View
}

type triggerRequest struct {
	Event string `json:"event"`
}

type changeRequest struct {
	State string `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates a new HTTP handler for the session API.
func NewHandler(sessions Sessions, opts ...Option) http.Handler {
	s := &Server{Sessions: sessions, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/states", s.GetStates)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/trigger", s.Trigger)
			r.Post("/change", s.ChangeState)
			r.Post("/undo", s.navigate((*rewind.Machine).Undo))
			r.Post("/redo", s.navigate((*rewind.Machine).Redo))
			r.Post("/reset", s.mutate(func(m *rewind.Machine) error {
				m.Reset()
				return nil
			}))
			r.Post("/clear-history", s.mutate(func(m *rewind.Machine) error {
				m.ClearHistory()
				return nil
			}))
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	cfg := s.Sessions.Config()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"version": rewind.Version,
		"initial": cfg.Initial,
		"states":  len(cfg.States),
	})
}

// GetStates handles GET /states?event=e.
func (s *Server) GetStates(w http.ResponseWriter, r *http.Request) {
	m, err := rewind.New(s.Sessions.Config())
	if err != nil {
		s.writeError(w, err)
		return
	}
	states := m.StatesForEvent(r.URL.Query().Get("event"))
	s.writeJSON(w, http.StatusOK, map[string][]string{"states": states})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	m, err := s.Sessions.Start(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("session created", "session_id", id)
	s.writeJSON(w, http.StatusCreated, viewOf(id, m))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(id, m))
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Trigger handles POST /sessions/{id}/trigger.
func (s *Server) Trigger(w http.ResponseWriter, r *http.Request) {
	var body triggerRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.mutate(func(m *rewind.Machine) error {
		return m.Trigger(body.Event)
	})(w, r)
}

// ChangeState handles POST /sessions/{id}/change.
func (s *Server) ChangeState(w http.ResponseWriter, r *http.Request) {
	var body changeRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.mutate(func(m *rewind.Machine) error {
		return m.ChangeState(body.State)
	})(w, r)
}

// mutate applies fn to an existing session and responds with its view.
func (s *Server) mutate(fn func(*rewind.Machine) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		m, err := s.apply(r.Context(), id, fn)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, viewOf(id, m))
	}
}

func (s *Server) navigate(step func(*rewind.Machine) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var ok bool
		m, err := s.apply(r.Context(), id, func(m *rewind.Machine) error {
			ok = step(m)
			return nil
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, NavigationResult{OK: ok, View: viewOf(id, m)})
	}
}

// apply refuses to create sessions implicitly; they come from POST /sessions.
func (s *Server) apply(ctx context.Context, id string, fn func(*rewind.Machine) error) (*rewind.Machine, error) {
	return s.Sessions.Update(ctx, id, fn)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func viewOf(id string, m *rewind.Machine) View {
	return View{
		ID:      id,
		State:   m.State(),
		History: m.History(),
		Redo:    m.RedoStack(),
		CanUndo: m.CanUndo(),
		CanRedo: m.CanRedo(),
	}
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownState), errors.Is(err, domain.ErrNoSuchTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

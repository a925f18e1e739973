package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/display"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/keymap"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// APIVersion is the version of the HTTP contract served by this package.
const APIVersion = "0.1.0"

// MaxBodyBytes caps request bodies. A key sequence never needs more.
const MaxBodyBytes = 64 << 10

// KeysRequest is the body of POST /sessions/{id}/keys.
// Keys holds key names ("7", "+", "Enter"); Text is decoded rune by rune.
// Both may be set, Keys are applied first.
type KeysRequest struct {
	Keys []string `json:"keys,omitempty"`
	Text string   `json:"text,omitempty"`
}

// EvaluateRequest is the body of POST /evaluate. A missing state means a
// freshly reset calculator.
type EvaluateRequest struct {
	State *domain.State `json:"state,omitempty"`
	KeysRequest
}

// CalculatorResponse is returned by every endpoint that shows a calculator.
type CalculatorResponse struct {
	SessionID    string         `json:"session_id,omitempty"`
	State        domain.State   `json:"state"`
	Display      display.Lines  `json:"display"`
	Outcome      domain.Outcome `json:"outcome,omitempty"`
	Notification string         `json:"notification,omitempty"`
}

// Server hosts calculator sessions over HTTP.
type Server struct {
	Engine   ports.Engine
	Sessions *session.Manager
	Streams  *StreamManager

	keymap   *keymap.Keymap
	glyphs   display.Glyphs
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	newID    func() string
}

// Option configures the Server.
type Option func(*Server)

// WithKeymap replaces the default key bindings.
func WithKeymap(k *keymap.Keymap) Option {
	return func(s *Server) {
		s.keymap = k
	}
}

// WithGlyphs sets the operator symbols used in display lines.
func WithGlyphs(g display.Glyphs) Option {
	return func(s *Server) {
		s.glyphs = g
	}
}

// WithMetrics reports the session store's size through m and serves gatherer on /metrics.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIDGenerator overrides how session IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// NewServer creates a server around engine and sessions.
func NewServer(engine ports.Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		Streams:  NewStreamManager(),
		keymap:   keymap.Default(),
		glyphs:   display.DefaultGlyphs,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	if s.metrics != nil {
		s.metrics.TrackSessions(s.countSessions)
	}
	return s
}

func (s *Server) countSessions(ctx context.Context) (int, error) {
	ids, err := s.Sessions.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Engine, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(engine, sessions, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", observability.Handler(s.gatherer))
	}

	r.Post("/evaluate", s.Evaluate)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/keys", s.PressKeys)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.newID()
	state, err := s.Sessions.Create(r.Context(), id)
	if err != nil {
		s.fail(w, "CreateSession", err)
		return
	}
	s.respond(w, http.StatusCreated, s.view(id, *state, domain.OutcomeNone))
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	s.respond(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	s.respond(w, http.StatusOK, s.view(id, *state, domain.OutcomeNone))
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Sessions.Load(r.Context(), id); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	s.Streams.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// PressKeys handles POST /sessions/{id}/keys.
func (s *Server) PressKeys(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body KeysRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.fail(w, "PressKeys", err)
		return
	}
	inputs, err := s.decodeKeys(body)
	if err != nil {
		s.fail(w, "PressKeys", err)
		return
	}

	// The broadcast happens under the session lock so subscribers see
	// updates in the order they were saved.
	var resp CalculatorResponse
	err = s.Sessions.WithLock(r.Context(), id, func(ctx context.Context) error {
		store := s.Sessions.Store()
		current, err := store.Load(ctx, id)
		if err != nil {
			return err
		}
		next, outcome, err := s.Engine.ApplyAll(ctx, current, inputs)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, id, next); err != nil {
			return err
		}
		resp = s.view(id, *next, outcome)
		s.publish(id, resp)
		return nil
	})
	if err != nil {
		s.fail(w, "PressKeys", err)
		return
	}
	s.respond(w, http.StatusOK, resp)
}

// Evaluate handles POST /evaluate. Nothing is stored.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body EvaluateRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.fail(w, "Evaluate", err)
		return
	}
	if body.State != nil {
		if err := abacus.ValidateState(*body.State); err != nil {
			s.fail(w, "Evaluate", err)
			return
		}
	}
	inputs, err := s.decodeKeys(body.KeysRequest)
	if err != nil {
		s.fail(w, "Evaluate", err)
		return
	}

	next, outcome, err := s.Engine.ApplyAll(r.Context(), body.State, inputs)
	if err != nil {
		s.fail(w, "Evaluate", err)
		return
	}
	s.respond(w, http.StatusOK, s.view("", *next, outcome))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"app":         "abacus-http",
		"version":     strings.TrimSpace(abacus.Version),
		"api_version": APIVersion,
	})
}

// -- Helpers --

func (s *Server) decodeKeys(body KeysRequest) ([]domain.Input, error) {
	inputs, err := s.keymap.Decode(body.Keys)
	if err != nil {
		return nil, err
	}
	if body.Text != "" {
		more, err := s.keymap.DecodeString(body.Text)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, more...)
	}
	return inputs, nil
}

func (s *Server) view(id string, state domain.State, outcome domain.Outcome) CalculatorResponse {
	return CalculatorResponse{
		SessionID:    id,
		State:        state,
		Display:      s.glyphs.Compose(state),
		Outcome:      outcome,
		Notification: outcome.Notification(),
	}
}

func (s *Server) publish(id string, resp CalculatorResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("stream encode failed", "session_id", id, "err", err)
		return
	}
	s.Streams.Broadcast(id, string(payload))
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err)
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrUnknownKey), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", domain.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

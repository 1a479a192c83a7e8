// Package slackhttp is the inbound listener: it verifies, parses and routes
// Slack interaction payloads and Events API callbacks into the session
// engine.
package slackhttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marquee-kit/marquee/internal/logging"
	"github.com/marquee-kit/marquee/pkg/domain"
	"github.com/marquee-kit/marquee/pkg/session"
)

// Engine is the subset of the session engine the listener dispatches into.
type Engine interface {
	HandleAction(ctx context.Context, p domain.ActionPayload) error
	HandleSubmission(ctx context.Context, p domain.ViewPayload) error
	HandleHome(ctx context.Context, name string, p domain.HomePayload) error
	HandleSearch(ctx context.Context, p domain.SuggestionPayload) (*session.OptionsResponse, error)
}

// Server routes inbound Slack traffic to the engine.
type Server struct {
	engine        Engine
	signingSecret string
	homeComponent string
	logger        *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures request logging. Defaults to a no-op.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithHome routes app_home_opened events to the named home component.
func WithHome(name string) Option {
	return func(s *Server) { s.homeComponent = name }
}

// NewHandler creates the HTTP handler for inbound Slack traffic. Routes:
// POST /slack/interactions (block_actions, view_submission, view_closed,
// block_suggestion) and POST /slack/events (Events API).
func NewHandler(engine Engine, signingSecret string, opts ...Option) http.Handler {
	s := &Server{
		engine:        engine,
		signingSecret: signingSecret,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(VerifySignature(signingSecret))
	r.Post("/slack/interactions", s.handleInteraction)
	r.Post("/slack/events", s.handleEvent)
	return r
}

// interactionEnvelope peeks at the payload discriminator before full
// decoding.
type interactionEnvelope struct {
	Type string `json:"type"`
}

func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	// Interactions arrive form-encoded with the JSON in a "payload" field.
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	raw := []byte(r.PostFormValue("payload"))
	if len(raw) == 0 {
		http.Error(w, "missing payload", http.StatusBadRequest)
		return
	}

	var env interactionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	logger := s.logger.With("request_id", uuid.NewString(), "payload_type", env.Type)

	switch env.Type {
	case "block_actions":
		var p domain.ActionPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		s.dispatch(w, r.Context(), logger, func(ctx context.Context) error {
			return s.engine.HandleAction(ctx, p)
		})

	case "view_submission", "view_closed":
		var p domain.ViewPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		p.Type = env.Type
		s.dispatch(w, r.Context(), logger, func(ctx context.Context) error {
			return s.engine.HandleSubmission(ctx, p)
		})

	case "block_suggestion":
		var p domain.SuggestionPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		resp, err := s.engine.HandleSearch(r.Context(), p)
		if err != nil {
			logger.Error("option search failed", "error", err)
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("encode options response failed", "error", err)
		}

	default:
		logger.Warn("unhandled interaction type")
		w.WriteHeader(http.StatusOK)
	}
}

// eventEnvelope covers Events API callbacks, including URL verification.
type eventEnvelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Event     struct {
		Type string      `json:"type"`
		User string      `json:"user"`
		View *struct {
			ID string `json:"id"`
		} `json:"view"`
	} `json:"event"`
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var env eventEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid event body", http.StatusBadRequest)
		return
	}

	if env.Type == "url_verification" {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(env.Challenge))
		return
	}

	logger := s.logger.With("request_id", uuid.NewString(), "event_type", env.Event.Type)

	if env.Event.Type == "app_home_opened" && s.homeComponent != "" {
		p := domain.HomePayload{User: domain.User{ID: env.Event.User}}
		if env.Event.View != nil {
			p.ViewID = env.Event.View.ID
		}
		s.dispatch(w, r.Context(), logger, func(ctx context.Context) error {
			return s.engine.HandleHome(ctx, s.homeComponent, p)
		})
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) dispatch(w http.ResponseWriter, ctx context.Context, logger *slog.Logger, fn func(ctx context.Context) error) {
	if err := fn(ctx); err != nil {
		logger.Error("event failed", "error", err)
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrContainerNotFound) || errors.Is(err, domain.ErrUnknownComponent) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

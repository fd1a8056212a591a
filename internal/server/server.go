// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"partyplnr/internal/chat"
	"partyplnr/internal/common/config"
	apperrors "partyplnr/internal/common/errors"
	"partyplnr/internal/common/logger"
	"partyplnr/internal/common/validation"
)

const chatRequestSchema = `{
  "type": "object",
  "properties": {
    "message": {"type": "string", "maxLength": 2000},
    "sessionId": {"type": "string", "maxLength": 128}
  }
}`

var chatSchema = validation.MustCompile(chatRequestSchema)

// Responder answers chat requests.
type Responder interface {
	Respond(ctx context.Context, req chat.Request) (*chat.Response, error)
}

type chatReply struct {
	Reply      string `json:"reply"`
	IsFollowUp bool   `json:"isFollowUp"`
	SessionID  string `json:"sessionId"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type Server struct {
	cfg        config.ServerConfig
	responder  Responder
	logger     logger.Logger
	httpServer *http.Server
	ready      func() bool
}

// Option customizes a Server.
type Option func(*Server)

// WithReadiness sets the check behind /ready.
func WithReadiness(fn func() bool) Option {
	return func(s *Server) { s.ready = fn }
}

func New(cfg config.ServerConfig, responder Responder, log logger.Logger, opts ...Option) *Server {
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = "pp_session"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 16 << 10
	}
	s := &Server{
		cfg:       cfg,
		responder: responder,
		logger:    log.WithFields(map[string]interface{}{"component": "server"}),
		ready:     func() bool { return true },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"address": s.cfg.Address})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, apperrors.NewInvalidRequestError("request body too large"), nil)
			return
		}
		s.writeError(w, http.StatusBadRequest, apperrors.NewInvalidRequestError("unreadable request body"), nil)
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	if result := chatSchema.ValidateJSON(body); !result.Valid {
		s.writeError(w, http.StatusBadRequest, apperrors.NewInvalidRequestError("request does not match schema"), result.GetErrorMessages())
		return
	}

	var req chat.Request
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.NewInvalidRequestError(err.Error()), nil)
		return
	}

	req.SessionID = s.sessionID(w, r, req.SessionID)

	ctx := r.Context()
	if timeout := config.GetDuration(s.cfg.RequestTimeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := s.responder.Respond(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.writeError(w, http.StatusGatewayTimeout, apperrors.NewTimeoutError("chat", err), nil)
			return
		}
		s.logger.Error("chat request failed", map[string]interface{}{"error": err, "sessionId": req.SessionID})
		s.writeError(w, http.StatusInternalServerError, &apperrors.StandardError{
			Code:    apperrors.ErrCodeInternal,
			Message: "Internal error",
		}, nil)
		return
	}

	writeJSON(w, http.StatusOK, chatReply{
		Reply:      resp.Text,
		IsFollowUp: resp.IsFollowUp,
		SessionID:  req.SessionID,
	})
}

// sessionID prefers the HttpOnly cookie, then an id in the body, then a new
// one. A body id only seeds a client without a cookie, so it cannot take
// over a browser session. The cookie is set whenever it is missing.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request, fromBody string) string {
	if cookie, err := r.Cookie(s.cfg.SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := fromBody
	if id == "" {
		id = uuid.NewString()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, stdErr *apperrors.StandardError, details []string) {
	s.logger.Warn("rejecting request", map[string]interface{}{
		"status":    status,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: details,
	}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

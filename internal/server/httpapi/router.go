// Package httpapi is the HTTP adapter over the actions boundary. Handlers
// decode, call one action, and encode; authorization happens inside actions.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"account-security-core/internal/actions"
)

// Pinger reports storage health for the readiness endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler holds the HTTP adapter's dependencies.
type Handler struct {
	actions   *actions.Actions
	db        Pinger
	logger    *slog.Logger
	telemetry *requestTelemetry
}

// NewHandler constructs an HTTP handler bound to the actions facade.
// db may be nil; then readyz only checks the process.
func NewHandler(a *actions.Actions, db Pinger, logger *slog.Logger) *Handler {
	return &Handler{actions: a, db: db, logger: logger, telemetry: newRequestTelemetry()}
}

// NewRouter registers all routes and the middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(h.requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.telemetryMiddleware)
	r.Use(h.loggingMiddleware)

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.Post("/password/change", h.changePassword)
		r.Post("/password/reset-request", h.requestPasswordReset)
		r.Post("/password/reset", h.resetPassword)

		r.Get("/sessions", h.listSessions)
		r.Delete("/sessions/{session_id}", h.revokeSession)
		r.Delete("/sessions", h.revokeOtherSessions)

		r.Post("/2fa/totp/enroll", h.enrollTOTP)
		r.Get("/2fa/methods", h.listTwoFactorMethods)
		r.Post("/2fa/methods", h.addTwoFactorMethod)
		r.Delete("/2fa/methods/{method_id}", h.removeTwoFactorMethod)
		r.Put("/2fa/methods/{method_id}/primary", h.setPrimaryTwoFactorMethod)
		r.Delete("/2fa", h.disableTwoFactor)

		r.Get("/api-keys", h.listAPIKeys)
		r.Post("/api-keys", h.createAPIKey)
		r.Delete("/api-keys/{key_id}", h.deleteAPIKey)

		r.Get("/audit-log", h.listAuditLog)
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "NOT_READY", "database unreachable")
			return
		}
	}
	writeMessage(w, http.StatusOK, "ready")
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

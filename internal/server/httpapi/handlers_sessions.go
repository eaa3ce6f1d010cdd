package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type sessionView struct {
	ID        string `json:"id"`
	Client    string `json:"client"`
	IsCurrent bool   `json:"is_current"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	infos, err := h.actions.ListSessions(r.Context(), bearerToken(r))
	if err != nil {
		h.writeMappedError(r.Context(), w, "list_sessions", err)
		return
	}
	views := make([]sessionView, 0, len(infos))
	for _, in := range infos {
		views = append(views, sessionView{
			ID:        in.ID,
			Client:    in.Client,
			IsCurrent: in.IsCurrent,
			CreatedAt: in.CreatedAt.Format(time.RFC3339),
			ExpiresAt: in.ExpiresAt.Format(time.RFC3339),
		})
	}
	writeSuccess(w, http.StatusOK, map[string]any{"sessions": views})
}

func (h *Handler) revokeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if err := h.actions.RevokeSession(r.Context(), bearerToken(r), sessionID); err != nil {
		h.writeMappedError(r.Context(), w, "revoke_session", err)
		return
	}
	writeMessage(w, http.StatusOK, "session revoked")
}

func (h *Handler) revokeOtherSessions(w http.ResponseWriter, r *http.Request) {
	n, err := h.actions.RevokeOtherSessions(r.Context(), bearerToken(r))
	if err != nil {
		h.writeMappedError(r.Context(), w, "revoke_other_sessions", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"revoked": n})
}

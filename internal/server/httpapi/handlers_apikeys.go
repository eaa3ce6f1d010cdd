package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type apiKeyView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Scopes     []string `json:"scopes"`
	ExpiresAt  string   `json:"expires_at,omitempty"`
	LastUsedAt string   `json:"last_used_at,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

type createAPIKeyRequest struct {
	Name   string   `json:"name"`
	Scopes []string `json:"scopes,omitempty"`
	// ExpiresInDays <= 0 means the key never expires.
	ExpiresInDays int `json:"expires_in_days,omitempty"`
}

func (h *Handler) createAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	var expiresAt *time.Time
	if req.ExpiresInDays > 0 {
		t := time.Now().UTC().AddDate(0, 0, req.ExpiresInDays)
		expiresAt = &t
	}
	created, err := h.actions.CreateAPIKey(r.Context(), bearerToken(r), req.Name, req.Scopes, expiresAt)
	if err != nil {
		h.writeMappedError(r.Context(), w, "create_api_key", err)
		return
	}
	// The plaintext key appears in this response and nowhere else.
	writeSuccess(w, http.StatusCreated, map[string]any{
		"id":   created.Key.ID,
		"name": created.Key.Name,
		"key":  created.Plaintext,
	})
}

func (h *Handler) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.actions.ListAPIKeys(r.Context(), bearerToken(r))
	if err != nil {
		h.writeMappedError(r.Context(), w, "list_api_keys", err)
		return
	}
	views := make([]apiKeyView, 0, len(keys))
	for _, k := range keys {
		v := apiKeyView{
			ID:        k.ID,
			Name:      k.Name,
			Scopes:    k.Scopes,
			CreatedAt: k.CreatedAt.Format(time.RFC3339),
		}
		if k.ExpiresAt != nil {
			v.ExpiresAt = k.ExpiresAt.Format(time.RFC3339)
		}
		if k.LastUsedAt != nil {
			v.LastUsedAt = k.LastUsedAt.Format(time.RFC3339)
		}
		views = append(views, v)
	}
	writeSuccess(w, http.StatusOK, map[string]any{"api_keys": views})
}

func (h *Handler) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "key_id")
	if err := h.actions.DeleteAPIKey(r.Context(), bearerToken(r), keyID); err != nil {
		h.writeMappedError(r.Context(), w, "delete_api_key", err)
		return
	}
	writeMessage(w, http.StatusOK, "api key deleted")
}

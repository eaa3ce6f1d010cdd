package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	twofactordomain "account-security-core/internal/twofactor/domain"
)

func (h *Handler) enrollTOTP(w http.ResponseWriter, r *http.Request) {
	enr, err := h.actions.GenerateTOTPEnrollment(r.Context(), bearerToken(r))
	if err != nil {
		h.writeMappedError(r.Context(), w, "enroll_totp", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"secret": enr.Secret,
		"url":    enr.URL,
	})
}

type methodView struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	IsPrimary bool   `json:"is_primary"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) listTwoFactorMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.actions.ListTwoFactorMethods(r.Context(), bearerToken(r))
	if err != nil {
		h.writeMappedError(r.Context(), w, "list_two_factor_methods", err)
		return
	}
	views := make([]methodView, 0, len(methods))
	for _, m := range methods {
		views = append(views, methodView{
			ID:        m.ID,
			Type:      string(m.Type),
			IsPrimary: m.IsPrimary,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	writeSuccess(w, http.StatusOK, map[string]any{"methods": views})
}

type addMethodRequest struct {
	Type   string `json:"type"`
	Secret string `json:"secret"`
	Code   string `json:"code,omitempty"`
}

func (h *Handler) addTwoFactorMethod(w http.ResponseWriter, r *http.Request) {
	var req addMethodRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	methodType, err := twofactordomain.ParseMethodType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	m, err := h.actions.AddTwoFactorMethod(r.Context(), bearerToken(r), methodType, req.Secret, req.Code)
	if err != nil {
		h.writeMappedError(r.Context(), w, "add_two_factor_method", err)
		return
	}
	writeSuccess(w, http.StatusCreated, methodView{
		ID:        m.ID,
		Type:      string(m.Type),
		IsPrimary: m.IsPrimary,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	})
}

func (h *Handler) removeTwoFactorMethod(w http.ResponseWriter, r *http.Request) {
	methodID := chi.URLParam(r, "method_id")
	if err := h.actions.RemoveTwoFactorMethod(r.Context(), bearerToken(r), methodID); err != nil {
		h.writeMappedError(r.Context(), w, "remove_two_factor_method", err)
		return
	}
	writeMessage(w, http.StatusOK, "method removed")
}

func (h *Handler) setPrimaryTwoFactorMethod(w http.ResponseWriter, r *http.Request) {
	methodID := chi.URLParam(r, "method_id")
	if err := h.actions.SetPrimaryTwoFactorMethod(r.Context(), bearerToken(r), methodID); err != nil {
		h.writeMappedError(r.Context(), w, "set_primary_two_factor_method", err)
		return
	}
	writeMessage(w, http.StatusOK, "primary method updated")
}

func (h *Handler) disableTwoFactor(w http.ResponseWriter, r *http.Request) {
	if err := h.actions.DisableTwoFactor(r.Context(), bearerToken(r)); err != nil {
		h.writeMappedError(r.Context(), w, "disable_two_factor", err)
		return
	}
	writeMessage(w, http.StatusOK, "two-factor disabled")
}

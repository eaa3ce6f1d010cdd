package httpapi

import (
	"errors"
	"net/http"
	"time"

	"account-security-core/internal/errs"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	user, err := h.actions.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeMappedError(r.Context(), w, "register", err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	res, err := h.actions.Login(r.Context(), req.Email, req.Password, req.TOTPCode, r.UserAgent())
	if err != nil {
		h.writeMappedError(r.Context(), w, "login", err)
		return
	}
	if res.TwoFactorRequired {
		writeSuccess(w, http.StatusOK, map[string]any{
			"two_factor_required": true,
		})
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"token":      res.Session.Token,
		"session_id": res.Session.ID,
		"expires_at": res.Session.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.actions.Logout(r.Context(), bearerToken(r)); err != nil {
		h.writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "logged out")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if err := h.actions.ChangePassword(r.Context(), bearerToken(r), req.CurrentPassword, req.NewPassword); err != nil {
		h.writeMappedError(r.Context(), w, "change_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "password changed")
}

type resetRequestRequest struct {
	Email string `json:"email"`
}

func (h *Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequestRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	token, err := h.actions.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		// Do not reveal whether the email exists.
		if errors.Is(err, errs.ErrNotFound) {
			writeMessage(w, http.StatusOK, "if the account exists, a reset token was issued")
			return
		}
		h.writeMappedError(r.Context(), w, "request_password_reset", err)
		return
	}
	// Returned directly for now; a mail sender would consume this instead.
	writeSuccess(w, http.StatusOK, map[string]any{"reset_token": token})
}

type resetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password,omitempty"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	generated, err := h.actions.ResetPassword(r.Context(), req.ResetToken, req.NewPassword)
	if err != nil {
		h.writeMappedError(r.Context(), w, "reset_password", err)
		return
	}
	if generated != "" {
		writeSuccess(w, http.StatusOK, map[string]any{"generated_password": generated})
		return
	}
	writeMessage(w, http.StatusOK, "password reset")
}

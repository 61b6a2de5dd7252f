package http

import (
	"net/http"

	"github.com/viralforge/facility-assistant/internal/application"
)

func (h *Handler) findAccount(w http.ResponseWriter, r *http.Request) {
	var req application.FindAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "find_account", err)
		return
	}
	res, err := h.service.FindAccount(r.Context(), sessionIDFromContext(r.Context()), req)
	if err != nil {
		writeFormError(r.Context(), w, "find_account", blankFieldsPrompt, err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) resetCredential(w http.ResponseWriter, r *http.Request) {
	var req application.ResetCredentialRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "reset_credential", err)
		return
	}
	res, err := h.service.ResetCredential(r.Context(), sessionIDFromContext(r.Context()), req)
	if err != nil {
		writeFormError(r.Context(), w, "reset_credential", "Please enter a new password.", err)
		return
	}
	writeNotice(w, http.StatusOK, "Password has been reset successfully. Please log in.", res)
}

func (h *Handler) cancelPasswordReset(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.CancelPasswordReset(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "cancel_password_reset", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

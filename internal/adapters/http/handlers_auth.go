package http

import (
	"net/http"

	"github.com/viralforge/facility-assistant/internal/application"
)

const blankFieldsPrompt = "Please fill in all fields."

func (h *Handler) selectRole(w http.ResponseWriter, r *http.Request) {
	var req application.SelectRoleRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "select_role", err)
		return
	}
	res, err := h.service.SelectRole(r.Context(), sessionIDFromContext(r.Context()), req)
	if err != nil {
		writeMappedError(r.Context(), w, "select_role", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) backToRoleSelection(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.BackToRoleSelection(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "back_to_role_selection", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "register", err)
		return
	}
	if err := h.service.Register(r.Context(), sessionIDFromContext(r.Context()), req); err != nil {
		writeFormError(r.Context(), w, "register", blankFieldsPrompt, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Registration successful! Please log in.")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	res, err := h.service.Login(r.Context(), sessionIDFromContext(r.Context()), req)
	if err != nil {
		writeFormError(r.Context(), w, "login", blankFieldsPrompt, err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Logout(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeNotice(w, http.StatusOK, "Logged out successfully", res)
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/facility-assistant/internal/application"
)

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Messages(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "list_messages", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"messages": items})
}

// sendMessage answers 200 even when the gateway failed: the reply is then the fallback text
// and gateway_failed is set.
func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req application.SendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "send_message", err)
		return
	}
	res, err := h.service.SendMessage(r.Context(), sessionIDFromContext(r.Context()), req)
	if err != nil {
		writeMappedError(r.Context(), w, "send_message", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) addReaction(w http.ResponseWriter, r *http.Request) {
	var req application.AddReactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "add_reaction", err)
		return
	}
	messageID := chi.URLParam(r, "message_id")
	items, err := h.service.AddReaction(r.Context(), sessionIDFromContext(r.Context()), messageID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "add_reaction", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"messages": items})
}

func (h *Handler) clearChat(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ClearChat(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "clear_chat", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"messages": items})
}

package http

import (
	"net/http"

	"github.com/viralforge/facility-assistant/internal/application"
)

func (h *Handler) toggleListening(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ToggleListening(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "toggle_listening", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

// submitTranscript answers 202 without a turn when the transcript was blank.
func (h *Handler) submitTranscript(w http.ResponseWriter, r *http.Request) {
	var req application.TranscriptRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "submit_transcript", err)
		return
	}
	res, err := h.service.SubmitTranscript(r.Context(), sessionIDFromContext(r.Context()), req)
	if err != nil {
		writeMappedError(r.Context(), w, "submit_transcript", err)
		return
	}
	if res == nil {
		writeMessage(w, http.StatusAccepted, "Empty transcript ignored")
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) currentUtterance(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.CurrentUtterance(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "current_utterance", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) cancelUtterance(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelUtterance(r.Context(), sessionIDFromContext(r.Context())); err != nil {
		writeMappedError(r.Context(), w, "cancel_utterance", err)
		return
	}
	writeMessage(w, http.StatusOK, "Speech cancelled")
}

func (h *Handler) listVoices(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Voices(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "list_voices", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"voices": items})
}

func (h *Handler) reportVoices(w http.ResponseWriter, r *http.Request) {
	var req application.ReportVoicesRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "report_voices", err)
		return
	}
	items, err := h.service.ReportVoices(r.Context(), sessionIDFromContext(r.Context()), req)
	if err != nil {
		writeMappedError(r.Context(), w, "report_voices", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"voices": items})
}

func (h *Handler) voiceSettings(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.VoiceSettings(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "voice_settings", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) updateVoiceSettings(w http.ResponseWriter, r *http.Request) {
	var req application.VoiceSettingsRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_voice_settings", err)
		return
	}
	res, err := h.service.UpdateVoiceSettings(r.Context(), sessionIDFromContext(r.Context()), req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_voice_settings", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

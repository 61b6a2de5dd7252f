package http

import (
	"net/http"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logHTTPOperationError(r.Context(), "readyz", http.StatusServiceUnavailable, "NOT_READY", "dependency unavailable", err)
			writeError(w, http.StatusServiceUnavailable, "NOT_READY", "dependency unavailable")
			return
		}
	}
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.OpenSession(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "open_session", err)
		return
	}
	w.Header().Set(sessionHeader, res.SessionID)
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetSession(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "get_session", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CloseSession(r.Context(), sessionIDFromContext(r.Context())); err != nil {
		writeMappedError(r.Context(), w, "close_session", err)
		return
	}
	writeMessage(w, http.StatusOK, "Session closed")
}

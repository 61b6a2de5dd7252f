package http

import (
	"encoding/json"
	"net/http"

	"github.com/viralforge/facility-assistant/internal/adapters/gateway"
)

const (
	proxyMissingKey = "API key is not configured."
	proxyFailed     = "Failed to get response from AI."
)

// assistantProxy keeps the upstream API key server-side. Its wire shape is fixed by deployed
// clients: {text} on success and a bare {error} with 500 on any failure.
func (h *Handler) assistantProxy(w http.ResponseWriter, r *http.Request) {
	var req gateway.ProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logHTTPOperationError(r.Context(), "assistant_proxy", http.StatusInternalServerError, "PROXY_FAILURE", proxyFailed, err)
		writeJSON(w, http.StatusInternalServerError, gateway.ProxyResponse{Error: proxyFailed})
		return
	}
	if h.upstream == nil {
		logHTTPOperationError(r.Context(), "assistant_proxy", http.StatusInternalServerError, "PROXY_MISSING_KEY", proxyMissingKey, nil)
		writeJSON(w, http.StatusInternalServerError, gateway.ProxyResponse{Error: proxyMissingKey})
		return
	}

	text, err := h.upstream.Generate(r.Context(), req.Prompt, req.History)
	if err != nil {
		logHTTPOperationError(r.Context(), "assistant_proxy", http.StatusInternalServerError, "PROXY_FAILURE", proxyFailed, err)
		writeJSON(w, http.StatusInternalServerError, gateway.ProxyResponse{Error: proxyFailed})
		return
	}
	writeJSON(w, http.StatusOK, gateway.ProxyResponse{Text: text})
}

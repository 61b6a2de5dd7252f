package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viralforge/facility-assistant/internal/application"
	"github.com/viralforge/facility-assistant/internal/ports"
)

// ReadinessCheck reports whether backing stores are reachable.
type ReadinessCheck func(ctx context.Context) error

// Handler is the HTTP adapter entrypoint for the assistant use-cases.
type Handler struct {
	service *application.Service
	// upstream serves the assistant proxy endpoint. Nil means no API key is configured.
	upstream ports.AssistantGateway
	ready    ReadinessCheck
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service, upstream ports.AssistantGateway, ready ReadinessCheck) *Handler {
	return &Handler{service: service, upstream: upstream, ready: ready}
}

// NewRouter registers the HTTP routes and middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})
	r.Get("/swagger/", handler.apiDocs)
	r.Get("/swagger/openapi.yaml", handler.openAPIDocument)

	r.Post("/api/gemini", handler.assistantProxy)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", handler.openSession)

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware)

			r.Get("/session", handler.getSession)
			r.Delete("/session", handler.closeSession)
			r.Post("/session/role", handler.selectRole)
			r.Delete("/session/role", handler.backToRoleSelection)

			r.Post("/auth/register", handler.register)
			r.Post("/auth/login", handler.login)
			r.Post("/auth/logout", handler.logout)
			r.Post("/auth/password/find", handler.findAccount)
			r.Post("/auth/password/reset", handler.resetCredential)
			r.Delete("/auth/password", handler.cancelPasswordReset)

			r.Get("/chat/messages", handler.listMessages)
			r.Post("/chat/messages", handler.sendMessage)
			r.Delete("/chat/messages", handler.clearChat)
			r.Post("/chat/messages/{message_id}/reactions", handler.addReaction)

			r.Get("/problems", handler.listProblems)
			r.Post("/problems", handler.reportProblem)
			r.Post("/problems/clear-resolved", handler.clearResolvedProblems)
			r.Get("/problems/{problem_id}", handler.getProblem)
			r.Patch("/problems/{problem_id}", handler.updateProblemStatus)
			r.Delete("/problems/{problem_id}", handler.deleteProblem)

			r.Post("/voice/listen", handler.toggleListening)
			r.Post("/voice/transcript", handler.submitTranscript)
			r.Get("/voice/utterance", handler.currentUtterance)
			r.Delete("/voice/utterance", handler.cancelUtterance)
			r.Get("/voice/voices", handler.listVoices)
			r.Put("/voice/voices", handler.reportVoices)
			r.Get("/voice/settings", handler.voiceSettings)
			r.Put("/voice/settings", handler.updateVoiceSettings)
		})
	})

	return r
}

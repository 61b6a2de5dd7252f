package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/facility-assistant/internal/application"
)

func (h *Handler) listProblems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := application.ListProblemsRequest{
		SearchTerm: query.Get("q"),
		Status:     query.Get("status"),
		Priority:   query.Get("priority"),
	}
	res, err := h.service.ListProblems(r.Context(), sessionIDFromContext(r.Context()), req)
	if err != nil {
		writeMappedError(r.Context(), w, "list_problems", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) getProblem(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetProblem(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "problem_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_problem", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) reportProblem(w http.ResponseWriter, r *http.Request) {
	var req application.ReportProblemRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "report_problem", err)
		return
	}
	res, err := h.service.ReportProblem(r.Context(), sessionIDFromContext(r.Context()), req)
	if err != nil {
		writeMappedError(r.Context(), w, "report_problem", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) updateProblemStatus(w http.ResponseWriter, r *http.Request) {
	var req application.UpdateProblemStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_problem_status", err)
		return
	}
	res, err := h.service.UpdateProblemStatus(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "problem_id"), req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_problem_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteProblem(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.DeleteProblem(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "problem_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "delete_problem", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (h *Handler) clearResolvedProblems(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.ClearResolvedProblems(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "clear_resolved_problems", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"removed": removed})
}

package application

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/viralforge/facility-assistant/internal/domain"
)

// ListProblems returns the admin's board filtered by search term, status and priority.
func (s *Service) ListProblems(ctx context.Context, sessionID string, req ListProblemsRequest) (ListProblemsResponse, error) {
	filter, err := parseProblemFilter(req)
	if err != nil {
		return ListProblemsResponse{}, err
	}
	var res ListProblemsResponse
	err = s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAdmin(sess); err != nil {
			return err
		}
		items := slices.Collect(sess.board.Filter(filter))
		if items == nil {
			items = []domain.Problem{}
		}
		res = ListProblemsResponse{
			Items:               items,
			Total:               sess.board.Len(),
			HasResolvedOrClosed: sess.board.HasResolvedOrClosed(),
		}
		return nil
	})
	return res, err
}

func (s *Service) GetProblem(ctx context.Context, sessionID, problemID string) (domain.Problem, error) {
	var out domain.Problem
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAdmin(sess); err != nil {
			return err
		}
		p, ok := sess.board.Get(problemID)
		if !ok {
			return fmt.Errorf("%w: problem", domain.ErrNotFound)
		}
		out = p
		return nil
	})
	return out, err
}

// ReportProblem files a ticket on an admin's board.
func (s *Service) ReportProblem(ctx context.Context, sessionID string, req ReportProblemRequest) (domain.Problem, error) {
	return s.reportProblem(ctx, sessionID, req, true)
}

// IntakeProblem files a ticket for internal callers. The target session must exist but its
// role is not checked.
func (s *Service) IntakeProblem(ctx context.Context, sessionID string, req ReportProblemRequest) (domain.Problem, error) {
	return s.reportProblem(ctx, sessionID, req, false)
}

func (s *Service) reportProblem(ctx context.Context, sessionID string, req ReportProblemRequest, adminOnly bool) (domain.Problem, error) {
	priority := domain.PriorityMedium
	if strings.TrimSpace(req.Priority) != "" {
		parsed, err := domain.ParseProblemPriority(req.Priority)
		if err != nil {
			return domain.Problem{}, err
		}
		priority = parsed
	}
	var out domain.Problem
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if adminOnly {
			if _, err := requireAdmin(sess); err != nil {
				return err
			}
		}
		p, err := sess.board.Report(req.Description, req.Location, priority)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return domain.Problem{}, err
	}
	s.emit(ctx, eventTypeProblemReported, out.ID, map[string]any{
		"problem_id":  out.ID,
		"session_id":  sessionID,
		"location":    out.Location,
		"priority":    out.Priority,
		"reported_at": out.ReportedAt,
	})
	return out, nil
}

// UpdateProblemStatus sets a ticket's status. An unknown id is a no-op reported as Updated=false.
func (s *Service) UpdateProblemStatus(ctx context.Context, sessionID, problemID string, req UpdateProblemStatusRequest) (UpdateProblemStatusResponse, error) {
	status, err := domain.ParseProblemStatus(req.Status)
	if err != nil {
		return UpdateProblemStatusResponse{}, err
	}
	var out UpdateProblemStatusResponse
	err = s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAdmin(sess); err != nil {
			return err
		}
		if p, ok := sess.board.UpdateStatus(problemID, status); ok {
			out = UpdateProblemStatusResponse{Updated: true, Problem: &p}
		}
		return nil
	})
	if err != nil || !out.Updated {
		return out, err
	}
	s.emit(ctx, eventTypeProblemUpdated, out.Problem.ID, map[string]any{
		"problem_id": out.Problem.ID,
		"status":     out.Problem.Status,
		"updated_at": s.nowFn(),
	})
	return out, nil
}

// DeleteProblem removes a ticket and reports whether one was removed. An unknown id is a no-op.
func (s *Service) DeleteProblem(ctx context.Context, sessionID, problemID string) (bool, error) {
	var deleted bool
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAdmin(sess); err != nil {
			return err
		}
		deleted = sess.board.Delete(problemID)
		return nil
	})
	if err != nil || !deleted {
		return false, err
	}
	s.emit(ctx, eventTypeProblemDeleted, problemID, map[string]any{
		"problem_id": problemID,
		"deleted_at": s.nowFn(),
	})
	return true, nil
}

// ClearResolvedProblems drops every Resolved or Closed ticket and returns how many were removed.
func (s *Service) ClearResolvedProblems(ctx context.Context, sessionID string) (int, error) {
	var removed int
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAdmin(sess); err != nil {
			return err
		}
		removed = sess.board.ClearResolvedAndClosed()
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.emit(ctx, eventTypeProblemsCleared, sessionID, map[string]any{
			"session_id": sessionID,
			"removed":    removed,
			"cleared_at": s.nowFn(),
		})
	}
	return removed, nil
}

// parseProblemFilter canonicalizes status and priority so the board compares display values.
func parseProblemFilter(req ListProblemsRequest) (domain.ProblemFilter, error) {
	filter := domain.ProblemFilter{SearchTerm: strings.TrimSpace(req.SearchTerm)}
	if status := strings.TrimSpace(req.Status); status != "" && !strings.EqualFold(status, domain.FilterAll) {
		parsed, err := domain.ParseProblemStatus(status)
		if err != nil {
			return domain.ProblemFilter{}, err
		}
		filter.Status = string(parsed)
	}
	if priority := strings.TrimSpace(req.Priority); priority != "" && !strings.EqualFold(priority, domain.FilterAll) {
		parsed, err := domain.ParseProblemPriority(priority)
		if err != nil {
			return domain.ProblemFilter{}, err
		}
		filter.Priority = string(parsed)
	}
	return filter, nil
}

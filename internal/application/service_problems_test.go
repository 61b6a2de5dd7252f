package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/viralforge/facility-assistant/internal/application"
	"github.com/viralforge/facility-assistant/internal/domain"
)

func TestProblemBoardIsAdminOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	student := f.openAs(t, domain.RoleStudent, "mia", "pw")

	if _, err := f.service.ListProblems(ctx, student, application.ListProblemsRequest{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("students must not see the board, got %v", err)
	}
	if _, err := f.service.ReportProblem(ctx, student, application.ReportProblemRequest{Description: "x", Location: "y"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("students must not report through the admin path, got %v", err)
	}

	view, _ := f.service.OpenSession(ctx)
	if _, err := f.service.ListProblems(ctx, view.SessionID, application.ListProblemsRequest{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous sessions must log in first, got %v", err)
	}
}

func TestProblemLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sid := f.openAs(t, domain.RoleAdmin, "admin", "password123")

	leak, err := f.service.ReportProblem(ctx, sid, application.ReportProblemRequest{Description: "Leaking pipe", Location: "Block B, 2F", Priority: "high"})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if leak.Status != domain.StatusReported || leak.Priority != domain.PriorityHigh || leak.ReportedAt.IsZero() {
		t.Fatalf("unexpected reported problem: %+v", leak)
	}
	light, err := f.service.ReportProblem(ctx, sid, application.ReportProblemRequest{Description: "Broken light", Location: "Library"})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if light.Priority != domain.PriorityMedium {
		t.Fatalf("priority should default to Medium, got %s", light.Priority)
	}
	if _, err := f.service.ReportProblem(ctx, sid, application.ReportProblemRequest{Description: "x"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("missing location should be rejected, got %v", err)
	}
	if _, err := f.service.ReportProblem(ctx, sid, application.ReportProblemRequest{Description: "x", Location: "y", Priority: "urgent"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown priority should be rejected, got %v", err)
	}

	byTerm, err := f.service.ListProblems(ctx, sid, application.ListProblemsRequest{SearchTerm: "LIBRARY"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(byTerm.Items) != 1 || byTerm.Items[0].ID != light.ID || byTerm.Total != 2 {
		t.Fatalf("unexpected search result: %+v", byTerm)
	}
	byID, _ := f.service.ListProblems(ctx, sid, application.ListProblemsRequest{SearchTerm: leak.ID[:8]})
	if len(byID.Items) != 1 || byID.Items[0].ID != leak.ID {
		t.Fatalf("search should match ids: %+v", byID)
	}

	if _, err := f.service.UpdateProblemStatus(ctx, sid, leak.ID, application.UpdateProblemStatusRequest{Status: "in_progress"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	inProgress, _ := f.service.ListProblems(ctx, sid, application.ListProblemsRequest{Status: "In Progress", Priority: "all"})
	if len(inProgress.Items) != 1 || inProgress.Items[0].Status != domain.StatusInProgress {
		t.Fatalf("status filter failed: %+v", inProgress)
	}
	if _, err := f.service.ListProblems(ctx, sid, application.ListProblemsRequest{Status: "pending"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown status filter should be rejected, got %v", err)
	}
	missing, err := f.service.UpdateProblemStatus(ctx, sid, "missing", application.UpdateProblemStatusRequest{Status: "Closed"})
	if err != nil || missing.Updated || missing.Problem != nil {
		t.Fatalf("unknown id should be a no-op, got %+v err=%v", missing, err)
	}
	if unchanged, _ := f.service.ListProblems(ctx, sid, application.ListProblemsRequest{Status: "Closed"}); len(unchanged.Items) != 0 {
		t.Fatalf("no-op update must not touch the board: %+v", unchanged)
	}

	if _, err := f.service.UpdateProblemStatus(ctx, sid, light.ID, application.UpdateProblemStatusRequest{Status: "Resolved"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	before, _ := f.service.ListProblems(ctx, sid, application.ListProblemsRequest{})
	if !before.HasResolvedOrClosed {
		t.Fatalf("board should report a resolved ticket")
	}
	removed, err := f.service.ClearResolvedProblems(ctx, sid)
	if err != nil || removed != 1 {
		t.Fatalf("expected one ticket cleared, got %d err=%v", removed, err)
	}
	after, _ := f.service.ListProblems(ctx, sid, application.ListProblemsRequest{})
	if after.Total != 1 || after.HasResolvedOrClosed {
		t.Fatalf("unexpected board after clear: %+v", after)
	}

	if deleted, err := f.service.DeleteProblem(ctx, sid, leak.ID); err != nil || !deleted {
		t.Fatalf("delete failed: deleted=%v err=%v", deleted, err)
	}
	if deleted, err := f.service.DeleteProblem(ctx, sid, leak.ID); err != nil || deleted {
		t.Fatalf("second delete should be a silent no-op, got deleted=%v err=%v", deleted, err)
	}
	empty, _ := f.service.ListProblems(ctx, sid, application.ListProblemsRequest{})
	if empty.Items == nil || len(empty.Items) != 0 {
		t.Fatalf("empty board should list an empty slice, got %#v", empty.Items)
	}
}

func TestIntakeProblemSkipsRoleCheck(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	view, _ := f.service.OpenSession(ctx)

	p, err := f.service.IntakeProblem(ctx, view.SessionID, application.ReportProblemRequest{Description: "Door stuck", Location: "Gym"})
	if err != nil {
		t.Fatalf("intake failed: %v", err)
	}
	if p.Status != domain.StatusReported {
		t.Fatalf("unexpected status %s", p.Status)
	}
	if _, err := f.service.IntakeProblem(ctx, "missing", application.ReportProblemRequest{Description: "x", Location: "y"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown session should be not found, got %v", err)
	}
}

func TestBoardsAreIsolatedPerSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	first := f.openAs(t, domain.RoleAdmin, "admin", "password123")
	second := f.openAs(t, domain.RoleAdmin, "admin", "password123")

	if _, err := f.service.ReportProblem(ctx, first, application.ReportProblemRequest{Description: "x", Location: "y"}); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	other, _ := f.service.ListProblems(ctx, second, application.ListProblemsRequest{})
	if other.Total != 0 {
		t.Fatalf("boards must not be shared between sessions")
	}
}

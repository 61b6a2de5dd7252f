package application_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/viralforge/facility-assistant/internal/application"
	"github.com/viralforge/facility-assistant/internal/domain"
)

func TestExpireIdleSessionsReleasesVoice(t *testing.T) {
	t.Parallel()

	f := newFixtureWithConfig(t, &fakeStore{items: map[string][]byte{}}, application.Config{
		AdminCode:      testAdminCode,
		SessionIdleTTL: time.Millisecond,
	})
	ctx := context.Background()
	view, err := f.service.OpenSession(ctx)
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	synth, recog := f.synths.last()

	time.Sleep(5 * time.Millisecond)
	if n := f.service.ExpireIdleSessions(ctx); n != 1 {
		t.Fatalf("expected one expired session, got %d", n)
	}
	if !synth.closed || !recog.closed {
		t.Fatalf("expired session should close its voice drivers")
	}
	if _, err := f.service.GetSession(ctx, view.SessionID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expired session should be gone, got %v", err)
	}
	if !slices.Contains(f.outbox.types(), "session.closed") {
		t.Fatalf("expected session.closed event")
	}
}

func TestActiveSessionsSurviveExpiry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sid := f.openAs(t, domain.RoleStudent, "rita", "pw")
	if n := f.service.ExpireIdleSessions(ctx); n != 0 {
		t.Fatalf("fresh session should not expire, got %d", n)
	}
	if _, err := f.service.GetSession(ctx, sid); err != nil {
		t.Fatalf("session should survive: %v", err)
	}
}

func TestCloseSessionAndShutdown(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	first, _ := f.service.OpenSession(ctx)
	if _, err := f.service.OpenSession(ctx); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if got := f.service.SessionCount(); got != 2 {
		t.Fatalf("expected two sessions, got %d", got)
	}
	if err := f.service.CloseSession(ctx, first.SessionID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := f.service.CloseSession(ctx, first.SessionID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second close should be not found, got %v", err)
	}
	f.service.Shutdown(ctx)
	if got := f.service.SessionCount(); got != 0 {
		t.Fatalf("shutdown should drop every session, got %d", got)
	}
	synth, _ := f.synths.last()
	if !synth.closed {
		t.Fatalf("shutdown should close voice drivers")
	}
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/facility-assistant/internal/ports"
)

func TestFlatStoreCopiesValues(t *testing.T) {
	t.Parallel()

	s := NewFlatStore()
	ctx := context.Background()
	value := []byte("abc")
	if err := s.Set(ctx, "k", value); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value[0] = 'x'
	raw, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(raw) != "abc" {
		t.Fatalf("stored value should not alias the caller's slice: %q", raw)
	}
	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Fatalf("missing key should be absent")
	}
}

func TestOutboxClaimRules(t *testing.T) {
	t.Parallel()

	r := NewOutboxRepository()
	ctx := context.Background()
	now := time.Now().UTC()
	first, second := uuid.New(), uuid.New()
	for _, id := range []uuid.UUID{first, second} {
		if err := r.Enqueue(ctx, ports.OutboxEvent{EventID: id, EventType: "t", OccurredAt: now}); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
	}

	batch, err := r.ClaimUnpublished(ctx, 1, "a", now.Add(time.Minute))
	if err != nil || len(batch) != 1 || batch[0].OutboxID != first {
		t.Fatalf("expected first event claimed, got %+v err=%v", batch, err)
	}
	other, _ := r.ClaimUnpublished(ctx, 10, "b", now.Add(time.Minute))
	if len(other) != 1 || other[0].OutboxID != second {
		t.Fatalf("claimed rows must not be handed out twice: %+v", other)
	}

	if err := r.MarkPublished(ctx, first, "wrong-token", now); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	if r.Pending() != 2 {
		t.Fatalf("a stale claim token must not publish")
	}
	_ = r.MarkPublished(ctx, first, "a", now)
	_ = r.MarkDeadLettered(ctx, second, "b", "boom", now)
	if r.Pending() != 0 {
		t.Fatalf("expected nothing pending")
	}
	if n := r.Compact(); n != 2 {
		t.Fatalf("expected two compacted records, got %d", n)
	}
}

func TestOutboxFailedEventIsRetried(t *testing.T) {
	t.Parallel()

	r := NewOutboxRepository()
	ctx := context.Background()
	now := time.Now().UTC()
	id := uuid.New()
	_ = r.Enqueue(ctx, ports.OutboxEvent{EventID: id, EventType: "t", OccurredAt: now})

	_, _ = r.ClaimUnpublished(ctx, 1, "a", now.Add(time.Minute))
	_ = r.MarkFailed(ctx, id, "a", "boom", now)
	retry, _ := r.ClaimUnpublished(ctx, 1, "b", now.Add(time.Minute))
	if len(retry) != 1 || retry[0].RetryCount != 1 || *retry[0].LastError != "boom" {
		t.Fatalf("failed event should be claimable again with retry metadata: %+v", retry)
	}
}

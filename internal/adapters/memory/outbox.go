package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/facility-assistant/internal/ports"
)

// OutboxRepository is the in-process outbox used when no database is configured.
// It follows the same claim rules as the Postgres table.
type OutboxRepository struct {
	mu      sync.Mutex
	records []ports.OutboxRecord
	nowFn   func() time.Time
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{nowFn: func() time.Time { return time.Now().UTC() }}
}

func (r *OutboxRepository) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      slices.Clone(event.Payload),
		CreatedAt:    event.OccurredAt,
	})
	return nil
}

func (r *OutboxRepository) ClaimUnpublished(_ context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	if claimToken == "" {
		return nil, fmt.Errorf("claim token is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFn()
	var out []ports.OutboxRecord
	for i := range r.records {
		rec := &r.records[i]
		if rec.PublishedAt != nil || rec.DeadLetteredAt != nil {
			continue
		}
		if rec.ClaimUntil != nil && !rec.ClaimUntil.Before(now) {
			continue
		}
		token, until := claimToken, claimUntil
		rec.ClaimToken, rec.ClaimUntil = &token, &until
		out = append(out, *rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	return r.release(outboxID, claimToken, func(rec *ports.OutboxRecord) {
		rec.PublishedAt = &at
	})
}

func (r *OutboxRepository) MarkFailed(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.release(outboxID, claimToken, func(rec *ports.OutboxRecord) {
		rec.RetryCount++
		rec.LastError = &errMsg
	})
}

func (r *OutboxRepository) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.release(outboxID, claimToken, func(rec *ports.OutboxRecord) {
		rec.RetryCount++
		rec.LastError = &errMsg
		rec.DeadLetteredAt = &at
	})
}

// Pending counts records that are neither published nor dead-lettered.
func (r *OutboxRepository) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.PublishedAt == nil && rec.DeadLetteredAt == nil {
			n++
		}
	}
	return n
}

// Compact drops published and dead-lettered records.
func (r *OutboxRepository) Compact() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.records)
	r.records = slices.DeleteFunc(r.records, func(rec ports.OutboxRecord) bool {
		return rec.PublishedAt != nil || rec.DeadLetteredAt != nil
	})
	return before - len(r.records)
}

func (r *OutboxRepository) release(outboxID uuid.UUID, claimToken string, apply func(*ports.OutboxRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		rec := &r.records[i]
		if rec.OutboxID != outboxID || rec.ClaimToken == nil || *rec.ClaimToken != claimToken {
			continue
		}
		apply(rec)
		rec.ClaimToken, rec.ClaimUntil = nil, nil
		return nil
	}
	return nil
}

package application

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/viralforge/facility-assistant/internal/ports"
)

// emit writes an event to the outbox. Failures are logged; no operation fails because of them.
func (s *Service) emit(ctx context.Context, eventType, partitionKey string, body map[string]any) {
	if s.outbox == nil {
		return
	}
	payload, err := json.Marshal(body)
	if err == nil {
		err = s.outbox.Enqueue(ctx, ports.OutboxEvent{
			EventID:      uuid.New(),
			EventType:    eventType,
			PartitionKey: partitionKey,
			Payload:      payload,
			OccurredAt:   s.nowFn(),
		})
	}
	if err != nil {
		s.warn(ctx, "enqueue_event", "failed to enqueue outbox event", err, "event_type", eventType)
	}
}

func (s *Service) warn(ctx context.Context, operation, msg string, err error, attrs ...any) {
	args := append([]any{
		"service", serviceName,
		"module", "application",
		"layer", "application",
		"operation", operation,
		"outcome", "failure",
		"error", err,
	}, attrs...)
	slog.Default().WarnContext(ctx, msg, args...)
}

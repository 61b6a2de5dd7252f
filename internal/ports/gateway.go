package ports

import (
	"context"

	"github.com/viralforge/facility-assistant/internal/domain"
)

// AssistantGateway turns the latest user utterance plus the prior conversation into a reply.
type AssistantGateway interface {
	Generate(ctx context.Context, prompt string, history []domain.HistoryEntry) (string, error)
}

package gateway

import (
	"context"
	"fmt"

	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/observability"
)

// Unconfigured stands in for the upstream when no API key is set. Every turn fails, so the
// conversation answers with the fallback reply instead of refusing to start.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, string, []domain.HistoryEntry) (string, error) {
	observability.GatewayCalls.WithLabelValues("unconfigured", "failure").Inc()
	return "", fmt.Errorf("%w: %w", domain.ErrGatewayFailure, ErrMissingAPIKey)
}

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/observability"
)

// ErrMissingAPIKey is returned when the upstream cannot be built for lack of a key.
var ErrMissingAPIKey = errors.New("API key is not configured")

type UpstreamConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Instruction string
	MaxRetries  int
}

// Upstream calls an OpenAI-compatible chat completions endpoint (Gemini by default).
type Upstream struct {
	client      openai.Client
	model       string
	instruction string
}

func NewUpstream(cfg UpstreamConfig) (*Upstream, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	instruction := cfg.Instruction
	if instruction == "" {
		instruction = SystemInstruction
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
	}
	if cfg.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	return &Upstream{
		client:      openai.NewClient(opts...),
		model:       model,
		instruction: instruction,
	}, nil
}

func (u *Upstream) Model() string { return u.model }

// Generate sends the system instruction, the prior history and the new prompt, and returns the
// first choice's text. Any failure, including an empty reply, wraps domain.ErrGatewayFailure.
func (u *Upstream) Generate(ctx context.Context, prompt string, history []domain.HistoryEntry) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(u.instruction))
	for _, entry := range history {
		if entry.Sender == domain.SenderBot {
			messages = append(messages, openai.AssistantMessage(entry.Text))
			continue
		}
		messages = append(messages, openai.UserMessage(entry.Text))
	}
	messages = append(messages, openai.UserMessage(prompt))

	start := time.Now()
	resp, err := u.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    u.model,
		Messages: messages,
	})
	if err != nil {
		u.record(ctx, outcomeOf(err), start, err)
		return "", fmt.Errorf("%w: %w", domain.ErrGatewayFailure, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		u.record(ctx, "failure", start, errors.New("empty reply"))
		return "", fmt.Errorf("%w: upstream returned no text", domain.ErrGatewayFailure)
	}
	u.record(ctx, "success", start, nil)
	return resp.Choices[0].Message.Content, nil
}

func (u *Upstream) record(ctx context.Context, outcome string, start time.Time, err error) {
	observability.GatewayCalls.WithLabelValues("upstream", outcome).Inc()
	attrs := []any{
		"service", "facility-assistant",
		"module", "gateway",
		"layer", "adapter",
		"operation", "generate",
		"outcome", outcome,
		"model", u.model,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		attrs = append(attrs, "status_code", apiErr.StatusCode)
	}
	if err != nil {
		slog.Default().WarnContext(ctx, "upstream generate failed", append(attrs, "error", err)...)
		return
	}
	slog.Default().DebugContext(ctx, "upstream generate completed", attrs...)
}

func outcomeOf(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "failure"
}

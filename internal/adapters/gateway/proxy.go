package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/observability"
)

// ProxyRequest is the body accepted by the assistant proxy endpoint.
type ProxyRequest struct {
	Prompt  string                `json:"prompt"`
	History []domain.HistoryEntry `json:"history"`
}

// ProxyResponse carries either the reply text or an error message.
type ProxyResponse struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// ProxyClient forwards turns to a remote assistant proxy so the API key stays on that host.
type ProxyClient struct {
	endpoint string
	client   *http.Client
}

func NewProxyClient(endpoint string, client *http.Client) (*ProxyClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("proxy endpoint is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ProxyClient{endpoint: endpoint, client: client}, nil
}

func (p *ProxyClient) Generate(ctx context.Context, prompt string, history []domain.HistoryEntry) (string, error) {
	text, err := p.generate(ctx, prompt, history)
	outcome := "success"
	if err != nil {
		outcome = outcomeOf(err)
	}
	observability.GatewayCalls.WithLabelValues("proxy", outcome).Inc()
	return text, err
}

func (p *ProxyClient) generate(ctx context.Context, prompt string, history []domain.HistoryEntry) (string, error) {
	if history == nil {
		history = []domain.HistoryEntry{}
	}
	body, err := json.Marshal(ProxyRequest{Prompt: prompt, History: history})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", domain.ErrGatewayFailure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", domain.ErrGatewayFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", domain.ErrGatewayFailure, err)
	}
	var out ProxyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: status %d: malformed body", domain.ErrGatewayFailure, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrGatewayFailure, resp.StatusCode, out.Error)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("%w: proxy returned no text", domain.ErrGatewayFailure)
	}
	return out.Text, nil
}

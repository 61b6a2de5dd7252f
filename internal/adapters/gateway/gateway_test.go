package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/viralforge/facility-assistant/internal/domain"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	} `json:"messages"`
}

func completionBody(text string) string {
	raw, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   DefaultModel,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": text},
		}},
	})
	return string(raw)
}

func TestUpstreamMapsHistoryRoles(t *testing.T) {
	t.Parallel()

	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer key")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("The gym is in Block C.")))
	}))
	defer srv.Close()

	up, err := NewUpstream(UpstreamConfig{APIKey: "test-key", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("new upstream: %v", err)
	}
	reply, err := up.Generate(context.Background(), "and the gym?", []domain.HistoryEntry{
		{Sender: domain.SenderUser, Text: "where is the pool?"},
		{Sender: domain.SenderBot, Text: "Block A."},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if reply != "The gym is in Block C." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if got.Model != DefaultModel {
		t.Fatalf("expected default model, got %q", got.Model)
	}
	roles := make([]string, 0, len(got.Messages))
	for _, m := range got.Messages {
		roles = append(roles, m.Role)
	}
	want := []string{"system", "user", "assistant", "user"}
	if len(roles) != len(want) {
		t.Fatalf("expected roles %v, got %v", want, roles)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("expected roles %v, got %v", want, roles)
		}
	}
}

func TestUpstreamFailures(t *testing.T) {
	t.Parallel()

	if _, err := NewUpstream(UpstreamConfig{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	up, _ := NewUpstream(UpstreamConfig{APIKey: "k", BaseURL: srv.URL + "/"})
	if _, err := up.Generate(context.Background(), "hi", nil); !errors.Is(err, domain.ErrGatewayFailure) {
		t.Fatalf("expected gateway failure, got %v", err)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("")))
	}))
	defer empty.Close()
	up, _ = NewUpstream(UpstreamConfig{APIKey: "k", BaseURL: empty.URL + "/"})
	if _, err := up.Generate(context.Background(), "hi", nil); !errors.Is(err, domain.ErrGatewayFailure) {
		t.Fatalf("empty reply should be a gateway failure, got %v", err)
	}
}

func TestUpstreamTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	up, _ := NewUpstream(UpstreamConfig{APIKey: "k", BaseURL: srv.URL + "/"})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := up.Generate(ctx, "hi", nil); !errors.Is(err, domain.ErrGatewayFailure) {
		t.Fatalf("timeout should surface as gateway failure, got %v", err)
	}
}

func TestProxyClient(t *testing.T) {
	t.Parallel()

	var got ProxyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		if got.Prompt == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Failed to get response from AI."}`))
			return
		}
		_, _ = w.Write([]byte(`{"text":"Hello from the proxy"}`))
	}))
	defer srv.Close()

	client, err := NewProxyClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("new proxy client: %v", err)
	}
	reply, err := client.Generate(context.Background(), "hi", nil)
	if err != nil || reply != "Hello from the proxy" {
		t.Fatalf("unexpected reply %q err=%v", reply, err)
	}
	if got.History == nil {
		t.Fatalf("history should be sent as an empty array")
	}
	if _, err := client.Generate(context.Background(), "fail", nil); !errors.Is(err, domain.ErrGatewayFailure) {
		t.Fatalf("expected gateway failure, got %v", err)
	}
	if _, err := NewProxyClient(" ", nil); err == nil {
		t.Fatalf("empty endpoint should fail")
	}
}

func TestUnconfiguredAlwaysFails(t *testing.T) {
	t.Parallel()

	_, err := Unconfigured{}.Generate(context.Background(), "hi", nil)
	if !errors.Is(err, domain.ErrGatewayFailure) || !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected gateway failure wrapping missing key, got %v", err)
	}
}

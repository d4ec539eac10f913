package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  "gpt-4o",
	}
}

func writeChatCompletion(w http.ResponseWriter, content, finish string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-2024-08-06",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     1200,
			"completion_tokens": 900,
			"total_tokens":      2100,
		},
	})
}

func TestOpenAIProvider_JSONMode(t *testing.T) {
	var body map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeChatCompletion(w, `{"questions":[]}`, "stop")
	}

	p := newTestOpenAIProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "make a quiz"}},
		JSONMode:    true,
		MaxTokens:   8000,
		Temperature: 0.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected response_format json_object, got %v", body["response_format"])
	}
	if body["max_tokens"] != float64(8000) {
		t.Fatalf("expected max_tokens 8000, got %v", body["max_tokens"])
	}
	if body["temperature"] != 0.5 {
		t.Fatalf("expected temperature 0.5, got %v", body["temperature"])
	}
	if body["model"] != "gpt-4o" {
		t.Fatalf("expected model gpt-4o, got %v", body["model"])
	}

	if string(resp.Content) != `{"questions":[]}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if resp.Usage.InputTokens != 1200 || resp.Usage.OutputTokens != 900 || resp.Usage.TotalTokens != 2100 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.Model != "gpt-4o-2024-08-06" {
		t.Fatalf("expected served model, got %q", resp.Model)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
}

func TestOpenAIProvider_NoFormatWithoutJSONMode(t *testing.T) {
	var body map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		writeChatCompletion(w, "plain text", "stop")
	}

	p := newTestOpenAIProvider(t, handler)
	if _, err := p.Generate(context.Background(), Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := body["response_format"]; ok {
		t.Fatalf("expected no response_format, got %v", body["response_format"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(msgs))
	}
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeChatCompletion(w, `{"questions":[`, "length")
	}

	p := newTestOpenAIProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{JSONMode: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StopReason != "max_tokens" {
		t.Fatalf("expected stop reason 'max_tokens', got %q", resp.StopReason)
	}
}

func TestOpenAIProvider_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "tokens",
				"message": "Rate limit exceeded",
				"code":    "rate_limit_exceeded",
			},
		})
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 100,
	})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_Unauthorized(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "invalid_request_error",
				"message": "Incorrect API key provided",
				"code":    "invalid_api_key",
			},
		})
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "server_error", "message": "Internal server error"},
		})
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"}); err == nil {
		t.Fatal("expected error for empty API key")
	}

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o", BaseURL: "https://gateway.example/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4o" {
		t.Fatalf("expected 'gpt-4o', got %q", p.ModelID())
	}
}

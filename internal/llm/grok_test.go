package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGrokProvider_Complete(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path=%q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth=%q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "grok-4-0709",
			"choices": [{"message": {"role": "assistant", "content": "The answer is B"}}],
			"usage": {
				"total_tokens": 1234,
				"completion_tokens_details": {"reasoning_tokens": 900}
			}
		}`))
	}))
	defer srv.Close()

	p := NewGrokProvider("test-key", srv.URL, "", 0)
	resp, err := p.Complete(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if resp.Content != "The answer is B" {
		t.Fatalf("content=%q", resp.Content)
	}
	if resp.Model != "grok-4-0709" {
		t.Fatalf("model=%q", resp.Model)
	}
	if resp.TotalTokens != 1234 || resp.ReasoningTokens != 900 {
		t.Fatalf("tokens=%d reasoning=%d", resp.TotalTokens, resp.ReasoningTokens)
	}

	if gotBody["model"] != "grok-4" {
		t.Fatalf("request model=%v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(100000) {
		t.Fatalf("request max_tokens=%v", gotBody["max_tokens"])
	}
	msgs, ok := gotBody["messages"].([]any)
	if !ok || len(msgs) != 1 {
		t.Fatalf("messages=%v", gotBody["messages"])
	}
	msg := msgs[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "prompt text" {
		t.Fatalf("message=%v", msg)
	}

	// The temperature field must be present on the wire; a missing field lets
	// the endpoint pick its own nonzero default and breaks reproducibility.
	temp, ok := gotBody["temperature"].(float64)
	if !ok {
		t.Fatalf("temperature missing from request body: %v", gotBody)
	}
	if temp > 1e-6 {
		t.Fatalf("temperature=%v, want effectively 0", temp)
	}
}

func TestGrokProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewGrokProvider("k", srv.URL, "grok-4", 100)
	if _, err := p.Complete(context.Background(), "p"); err == nil {
		t.Fatalf("expected error on 503")
	}
}

func TestGrokProvider_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [], "usage": {"total_tokens": 1}}`))
	}))
	defer srv.Close()

	p := NewGrokProvider("k", srv.URL, "grok-4", 100)
	_, err := p.Complete(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "empty choices") {
		t.Fatalf("err=%v", err)
	}
}

func TestGrokProvider_NilGuards(t *testing.T) {
	var nilP *GrokProvider
	if _, err := nilP.Complete(context.Background(), "p"); err == nil {
		t.Fatalf("nil provider: expected error")
	}
	if nilP.Model() != "" {
		t.Fatalf("nil Model=%q", nilP.Model())
	}

	p := NewGrokProvider("k", "", "", 0)
	if _, err := p.Complete(nil, "p"); err == nil {
		t.Fatalf("nil ctx: expected error")
	}
	if p.Name() != "grok" || p.Model() != "grok-4" {
		t.Fatalf("name/model=%q/%q", p.Name(), p.Model())
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"grok", "xai", " GROK "} {
		p, err := New(name, "k", "", "", 0)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if p.Name() != "grok" {
			t.Fatalf("New(%q).Name()=%q", name, p.Name())
		}
	}

	for _, name := range []string{"claude", "anthropic"} {
		p, err := New(name, "k", "", "", 0)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if p.Name() != "claude" {
			t.Fatalf("New(%q).Name()=%q", name, p.Name())
		}
	}

	if _, err := New("gemini", "k", "", "", 0); err == nil {
		t.Fatalf("unknown provider: expected error")
	}
}

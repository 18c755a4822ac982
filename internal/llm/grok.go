package llm

import (
	"context"
	"errors"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultGrokBaseURL = "https://api.x.ai/v1"
	defaultGrokModel   = "grok-4"
)

// GrokProvider talks to the x.ai OpenAI-compatible chat completions API.
type GrokProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewGrokProvider(apiKey string, baseURL string, model string, maxTokens int) *GrokProvider {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGrokBaseURL
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = defaultGrokModel
	}
	if maxTokens <= 0 {
		maxTokens = 100000
	}

	return &GrokProvider{
		client:    openai.NewClientWithConfig(cfg),
		model:     m,
		maxTokens: maxTokens,
	}
}

func (p *GrokProvider) Name() string { return "grok" }

func (p *GrokProvider) Model() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *GrokProvider) Complete(ctx context.Context, prompt string) (*Response, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: grok: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: grok: nil context")
	}

	// Temperature is pinned to 0 for reproducibility. The client drops a
	// literal 0 via omitempty, so the smallest nonzero float stands in: it
	// serializes as ~1e-45 and the field stays on the wire.
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: grok: empty choices")
	}

	out := &Response{
		Content:     resp.Choices[0].Message.Content,
		Model:       strings.TrimSpace(resp.Model),
		TotalTokens: resp.Usage.TotalTokens,
	}
	if out.Model == "" {
		out.Model = p.model
	}
	if d := resp.Usage.CompletionTokensDetails; d != nil {
		out.ReasoningTokens = d.ReasoningTokens
	}
	return out, nil
}

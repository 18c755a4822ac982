package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

const (
	defaultClaudeModel     = "claude-sonnet-4-5-20250929"
	defaultClaudeMaxTokens = 32000
)

// ClaudeProvider serves the same benchmark through the Anthropic messages API.
type ClaudeProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

func NewClaudeProvider(apiKey string, baseURL string, model string, maxTokens int) *ClaudeProvider {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if v := strings.TrimSpace(apiKey); v != "" {
		opts = append(opts, option.WithAPIKey(v))
	}
	if v := strings.TrimRight(strings.TrimSpace(baseURL), "/"); v != "" {
		opts = append(opts, option.WithBaseURL(v))
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = defaultClaudeModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	return &ClaudeProvider{
		client:    anthropic.NewClient(opts...),
		model:     m,
		maxTokens: maxTokens,
	}
}

func (p *ClaudeProvider) Name() string { return "claude" }

func (p *ClaudeProvider) Model() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *ClaudeProvider) Complete(ctx context.Context, prompt string) (*Response, error) {
	if p == nil {
		return nil, errors.New("llm: claude: nil provider")
	}
	if ctx == nil {
		return nil, errors.New("llm: claude: nil context")
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: param.NewOpt(0.0),
	})
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	out := &Response{
		Content:     sb.String(),
		Model:       string(msg.Model),
		TotalTokens: int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}
	if out.Model == "" {
		out.Model = p.model
	}
	return out, nil
}

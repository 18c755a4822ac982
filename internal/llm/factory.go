package llm

import (
	"fmt"
	"strings"
)

// New builds a provider by name. "xai" is accepted as an alias for "grok" and
// "anthropic" for "claude".
func New(name string, apiKey string, baseURL string, model string, maxTokens int) (Provider, error) {
	switch normalizeName(name) {
	case "grok":
		return NewGrokProvider(apiKey, baseURL, model, maxTokens), nil
	case "claude":
		return NewClaudeProvider(apiKey, baseURL, model, maxTokens), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q (expected grok|claude)", name)
	}
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "xai":
		return "grok"
	case "anthropic":
		return "claude"
	default:
		return name
	}
}

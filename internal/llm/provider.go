package llm

import "context"

// Provider abstracts a chat-completion model endpoint. A single call is one
// attempt; retry policy lives in the inference client, not here.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, prompt string) (*Response, error)
}

// Response is one successful model completion.
type Response struct {
	Content         string
	Model           string
	TotalTokens     int
	ReasoningTokens int
}

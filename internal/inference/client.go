package inference

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/stellarlinkco/gpqa-eval/internal/llm"
)

const (
	defaultMaxAttempts    = 3
	defaultBaseDelay      = 5 * time.Second
	defaultAttemptTimeout = 15 * time.Minute
)

// Stats counts call-level events across an evaluation. The client increments
// them as a side channel; the runner owns the instance and persists it with
// the checkpoint.
type Stats struct {
	APICalls        int `json:"api_calls"`
	APIErrors       int `json:"api_errors"`
	Timeouts        int `json:"timeouts"`
	TokensUsed      int `json:"tokens_used"`
	ReasoningTokens int `json:"reasoning_tokens"`
}

// Outcome is the result of one inference call after internal retries.
type Outcome struct {
	OK              bool
	Content         string
	Model           string
	TotalTokens     int
	ReasoningTokens int
	Elapsed         time.Duration
	Reason          string
}

// Option configures a Client.
type Option func(*Client)

// WithMaxAttempts sets the attempt budget per Invoke.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if c != nil && n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the linear backoff base (delay = base * attempt).
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if c != nil && d >= 0 {
			c.baseDelay = d
		}
	}
}

// WithAttemptTimeout bounds a single attempt. The default is generous because
// verbose reasoning outputs can take many minutes to generate.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c != nil && d > 0 {
			c.attemptTimeout = d
		}
	}
}

// Client performs inference calls with bounded retries and linear backoff.
type Client struct {
	provider       llm.Provider
	stats          *Stats
	logger         *log.Logger
	maxAttempts    int
	baseDelay      time.Duration
	attemptTimeout time.Duration
}

// NewClient wraps a provider. stats must not be nil; it is the caller's view
// into call-level counters regardless of outcome. A nil logger disables
// progress output.
func NewClient(provider llm.Provider, stats *Stats, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		provider:       provider,
		stats:          stats,
		logger:         logger,
		maxAttempts:    defaultMaxAttempts,
		baseDelay:      defaultBaseDelay,
		attemptTimeout: defaultAttemptTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Invoke sends the prompt, retrying on any error up to the attempt budget.
// The returned Outcome is a failure only after all attempts are exhausted;
// its reason preserves the last concrete error.
func (c *Client) Invoke(ctx context.Context, prompt string) Outcome {
	start := time.Now()

	if c == nil || c.provider == nil {
		return Outcome{Reason: "inference: nil client or provider"}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c.stats == nil {
		c.stats = &Stats{}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		attemptStart := time.Now()
		resp, err := c.provider.Complete(attemptCtx, prompt)
		cancel()

		c.stats.APICalls++

		if err == nil && resp != nil {
			c.stats.TokensUsed += resp.TotalTokens
			c.stats.ReasoningTokens += resp.ReasoningTokens
			c.logf("api call succeeded in %.2fs (tokens=%d reasoning=%d)",
				time.Since(attemptStart).Seconds(), resp.TotalTokens, resp.ReasoningTokens)
			return Outcome{
				OK:              true,
				Content:         resp.Content,
				Model:           resp.Model,
				TotalTokens:     resp.TotalTokens,
				ReasoningTokens: resp.ReasoningTokens,
				Elapsed:         time.Since(start),
			}
		}
		if err == nil {
			err = errors.New("inference: nil response")
		}
		lastErr = err

		if isTimeout(err) {
			c.stats.Timeouts++
			c.logf("api call timed out (attempt %d/%d) after %.2fs", attempt, c.maxAttempts, time.Since(attemptStart).Seconds())
		} else {
			c.stats.APIErrors++
			c.logf("api call failed (attempt %d/%d): %v", attempt, c.maxAttempts, err)
		}

		// Parent cancellation ends the retry budget early.
		if ctx.Err() != nil {
			break
		}

		if attempt < c.maxAttempts {
			delay := c.baseDelay * time.Duration(attempt)
			c.logf("retrying in %s", delay)
			if err := sleepWithContext(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}
	}

	return Outcome{
		Reason:  fmt.Sprintf("all %d attempts failed: %v", c.maxAttempts, lastErr),
		Elapsed: time.Since(start),
	}
}

func (c *Client) logf(format string, args ...any) {
	if c == nil || c.logger == nil {
		return
	}
	c.logger.Printf(format, args...)
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

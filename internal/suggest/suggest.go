// Package suggest asks an AI text-completion service for a translation of a study item.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rcliao/studylog/internal/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Provider calls one completion backend. Implementations return an error for
// every failure; Client turns errors into "no suggestion".
type Provider interface {
	Suggest(ctx context.Context, text string, typ model.EntryType) (*model.Suggestion, error)
	Name() string
}

// ErrIncomplete is returned when the response lacks a required field.
var ErrIncomplete = errors.New("suggestion missing required field")

// Prompt builds the completion prompt for text of the given type.
func Prompt(text string, typ model.EntryType) string {
	return fmt.Sprintf("Provide a clear translation and a usage example for this %s: \"%s\". "+
		"Respond in a structured JSON format with the fields \"translation\", \"example\" and optionally \"notes\".",
		typ, text)
}

// ParseSuggestion decodes a JSON object with required non-empty
// "translation" and "example" fields and an optional "notes" field.
func ParseSuggestion(raw string) (*model.Suggestion, error) {
	var s model.Suggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &s); err != nil {
		return nil, fmt.Errorf("decode suggestion: %w", err)
	}
	if strings.TrimSpace(s.Translation) == "" {
		return nil, fmt.Errorf("%w: translation", ErrIncomplete)
	}
	if strings.TrimSpace(s.Example) == "" {
		return nil, fmt.Errorf("%w: example", ErrIncomplete)
	}
	return &s, nil
}

// Client wraps a Provider with rate limiting and swallows failures.
type Client struct {
	provider Provider
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLimiter spaces provider calls.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger used for swallowed failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient wraps p. A nil provider yields a disabled client.
func NewClient(p Provider, opts ...Option) *Client {
	c := &Client{provider: p, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether a provider is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.provider != nil
}

// Suggest returns a suggestion for text, or nil when there is none. No
// suggestion is a normal outcome: empty text, a disabled client and every
// provider failure all return nil. Calls are never retried.
func (c *Client) Suggest(ctx context.Context, text string, typ model.EntryType) *model.Suggestion {
	if !c.Enabled() || strings.TrimSpace(text) == "" {
		return nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.logger.Warn("suggestion skipped", zap.String("provider", c.provider.Name()), zap.Error(err))
			return nil
		}
	}

	s, err := c.provider.Suggest(ctx, text, typ)
	if err != nil {
		c.logger.Warn("translation suggestion failed",
			zap.String("provider", c.provider.Name()),
			zap.String("type", string(typ)),
			zap.Error(err))
		return nil
	}
	return s
}

// Gate admits one suggestion request at a time. Callers disable their
// trigger while a request holds the gate.
type Gate struct {
	mu sync.Mutex
}

// TryAcquire takes the gate without blocking. The returned release func is
// safe to call more than once.
func (g *Gate) TryAcquire() (release func(), ok bool) {
	if !g.mu.TryLock() {
		return func() {}, false
	}
	var once sync.Once
	return func() { once.Do(g.mu.Unlock) }, true
}

package suggest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rcliao/studylog/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewFromConfig builds a client for cfg.Provider. An empty provider returns
// a disabled client.
func NewFromConfig(ctx context.Context, cfg config.SuggestConfig, logger *zap.Logger) (*Client, error) {
	opts := []Option{WithLogger(logger)}
	if cfg.RateLimit > 0 {
		opts = append(opts, WithLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))))
	}

	httpClient := &http.Client{Timeout: cfg.Timeout.Duration()}

	var p Provider
	switch cfg.Provider {
	case "":
		return NewClient(nil, opts...), nil
	case "gemini":
		g, err := NewGeminiProvider(ctx, cfg.APIKey.Value(), cfg.Model, cfg.BaseURL, httpClient)
		if err != nil {
			return nil, err
		}
		p = g
	case "ollama":
		p = NewOllamaProvider(cfg.BaseURL, cfg.Model, httpClient)
	case "openai":
		p = NewOpenAIProvider(cfg.BaseURL, cfg.APIKey.Value(), cfg.Model, httpClient)
	default:
		return nil, fmt.Errorf("unknown suggestion provider %q", cfg.Provider)
	}
	return NewClient(p, opts...), nil
}

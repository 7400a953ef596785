package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/luminacare/assistant/internal/config"
)

type gateway struct {
	providers        map[string]Provider
	defaultProvider  string
	fallbackProvider string
	maxRetries       int
}

func NewGateway(cfg config.LLMConfig) Gateway {
	g := &gateway{
		providers:        make(map[string]Provider),
		defaultProvider:  cfg.DefaultProvider,
		fallbackProvider: cfg.FallbackProvider,
		maxRetries:       cfg.MaxRetries,
	}

	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	if cfg.OllamaURL != "" {
		g.providers["ollama"] = NewOllamaProvider(cfg.OllamaURL)
	}

	return g
}

func (g *gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}

	resp, err := withRetry(ctx, g.maxRetries, func() (*ChatResponse, error) {
		p, perr := g.Provider(providerName)
		if perr != nil {
			return nil, perr
		}
		return p.ChatCompletion(ctx, req)
	})
	if err != nil && g.fallbackProvider != "" && g.fallbackProvider != providerName {
		slog.Warn("primary provider failed, trying fallback",
			"primary", providerName,
			"fallback", g.fallbackProvider,
			"error", err,
		)
		return withRetry(ctx, g.maxRetries, func() (*ChatResponse, error) {
			p, perr := g.Provider(g.fallbackProvider)
			if perr != nil {
				return nil, perr
			}
			return p.ChatCompletion(ctx, req)
		})
	}
	return resp, err
}

func (g *gateway) Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}

	return withRetry(ctx, g.maxRetries, func() (*EmbeddingResponse, error) {
		p, err := g.Provider(providerName)
		if err != nil {
			return nil, err
		}
		return p.GenerateEmbedding(ctx, req)
	})
}

// withRetry applies quadratic backoff between attempts. Retry lives only
// here, on the network-bound stages; in-memory scoring never retries.
func withRetry[T any](ctx context.Context, maxRetries int, call func() (*T, error)) (*T, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			slog.Debug("retrying LLM call", "attempt", attempt)
		}

		resp, err := call()
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all retries exhausted: %w", lastErr)
}

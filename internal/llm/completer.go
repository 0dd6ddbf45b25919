// Package llm talks to hosted language models that translate admin phrasing
// into structured commands.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var (
	// ErrNotConfigured is returned when no API credential was supplied.
	ErrNotConfigured = errors.New("LLM API key is not configured")
	// ErrRateLimited is returned when the provider throttles the request.
	ErrRateLimited = errors.New("LLM rate limit exceeded, please try again later")
	// ErrQuotaExceeded is returned when the provider account has no credit left.
	ErrQuotaExceeded = errors.New("LLM quota exhausted, please add credits")
	// ErrEmptyCompletion is returned when the provider answered without text.
	ErrEmptyCompletion = errors.New("LLM returned no completion")
)

// Completer returns a single textual completion for a system prompt and user
// message.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// New builds the Completer for cfg. A missing API key yields a Completer
// that fails every call with ErrNotConfigured instead of failing startup.
func New(ctx context.Context, cfg Config) (Completer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return unconfigured{}, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
}

type unconfigured struct{}

func (unconfigured) Complete(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

// ObserverFunc receives the latency and outcome of every completion.
type ObserverFunc func(elapsed time.Duration, err error)

type observed struct {
	next    Completer
	observe ObserverFunc
}

// WithObserver wraps c so that each call is reported to observe.
func WithObserver(c Completer, observe ObserverFunc) Completer {
	if observe == nil {
		return c
	}
	return observed{next: c, observe: observe}
}

func (o observed) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	start := time.Now()
	out, err := o.next.Complete(ctx, systemPrompt, userMessage)
	o.observe(time.Since(start), err)
	return out, err
}

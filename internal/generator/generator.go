// Package generator calls the hosted language model that drafts posts.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingCredential is returned when no API key is configured.
	ErrMissingCredential = errors.New("API key not configured")
	// ErrEmptyResponse is returned when the provider answers without text.
	ErrEmptyResponse = errors.New("empty response from API")
)

// Default request settings.
const (
	DefaultTemperature = 1.0
	DefaultMaxTokens   = 2000
	DefaultTimeout     = 30 * time.Second
)

// Generator produces text from a system and a user instruction.
type Generator interface {
	Generate(ctx context.Context, system, user string, opts ...Option) (string, error)
}

// Options are per-call request settings.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Option configures a single call.
type Option func(*Options)

// WithMaxTokens caps the length of the generated output.
func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = t }
}

func buildOptions(opts []Option) Options {
	o := Options{MaxTokens: DefaultMaxTokens, Temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Config selects and configures a provider.
type Config struct {
	Provider string // "deepseek" (default) or "anthropic"
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// New creates the generator for cfg.Provider.
func New(cfg Config) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	switch cfg.Provider {
	case "deepseek", "":
		return NewDeepSeekClient(DeepSeekConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	case "anthropic":
		return NewAnthropicClient(AnthropicConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
}

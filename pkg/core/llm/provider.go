// Package llm wraps the text-generation backends used to draft valuation
// commentary.
package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a provider has no credentials.
var ErrNotConfigured = errors.New("llm provider not configured")

// Options tune one generation call. Zero values mean provider defaults.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int32
}

// Provider generates text from a prompt and a system instruction.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt, systemPrompt string, opts Options) (string, error)
}

// Static returns the same text, or error, for every prompt. It stands in
// for a real backend in tests.
type Static struct {
	Text string
	Err  error
}

var _ Provider = Static{}

func (s Static) GenerateResponse(ctx context.Context, prompt, systemPrompt string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Text, s.Err
}

// Package llm is the gateway to the hosted language model. Callers build a
// Prompt and receive raw text; decoding and validation of that text belong
// to the caller.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single completion when the prompt sets none.
const DefaultTimeout = 60 * time.Second

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("llm: api key not configured")

// Prompt is one chat completion request.
type Prompt struct {
	System      string
	User        string
	JSON        bool
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Completions generates text for a prompt.
type Completions interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// CompletionsFunc adapts a function to Completions.
type CompletionsFunc func(ctx context.Context, p Prompt) (string, error)

func (f CompletionsFunc) Generate(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// ImageRequest asks for a single generated image.
type ImageRequest struct {
	Prompt string
	Model  string
	Size   string
}

// Images generates an image and returns its URL.
type Images interface {
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

// ImagesFunc adapts a function to Images.
type ImagesFunc func(ctx context.Context, req ImageRequest) (string, error)

func (f ImagesFunc) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	return f(ctx, req)
}

// UpstreamFormatError reports a model reply that could not be used.
type UpstreamFormatError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *UpstreamFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unusable model reply: %s: %v", e.Reason, e.Err)
	}
	return "unusable model reply: " + e.Reason
}

func (e *UpstreamFormatError) Unwrap() error {
	return e.Err
}

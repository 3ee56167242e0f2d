// Package llm sends prompts to a generative-language model and returns the
// completion text. Vendor wire formats stay inside the adapters in this package.
package llm

import (
	"context"
	"fmt"
)

// TextCompletionProvider is the only capability the analysis pipeline needs
// from a model vendor.
type TextCompletionProvider interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// Options are the generation parameters sent with every prompt. TopK and TopP
// are omitted from the request when nil.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
	TopK            *float32
	TopP            *float32
}

func DefaultOptions() Options {
	topK, topP := float32(40), float32(0.9)
	return Options{
		Temperature:     0.4,
		MaxOutputTokens: 2048,
		TopK:            &topK,
		TopP:            &topP,
	}
}

// UpstreamError reports a failed call to the model API. Status is 0 when the
// request never got an HTTP response.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("model API call failed: %s", e.Body)
	}
	return fmt.Sprintf("model API returned %d: %s", e.Status, e.Body)
}

// ProviderFunc adapts a function to TextCompletionProvider.
type ProviderFunc func(ctx context.Context, prompt string, opts Options) (string, error)

func (f ProviderFunc) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}

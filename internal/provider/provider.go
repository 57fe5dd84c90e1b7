package provider

import "context"

// Options tune a single completion call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Provider is the chat-completion contract the planner and summarizer
// consume. Implementations must respect ctx cancellation; callers treat
// any error as "the model is unavailable" and fall back deterministically.
type Provider interface {
	Generate(ctx context.Context, system, user string, opts Options) (string, error)
}

package driven

import "context"

// LLMService turns a prompt into a single non-streamed reply. It is
// optional: without one, retrieval still works and answering reports
// domain.ErrLLMUnavailable.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// GenerateOptions tune one Generate call. Zero values leave the model's
// own defaults in place.
type GenerateOptions struct {
	// System is sent ahead of the prompt as the system message.
	System string

	MaxTokens   int
	Temperature float64
}

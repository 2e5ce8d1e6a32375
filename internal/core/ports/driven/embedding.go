package driven

import "context"

// EmbeddingService maps text to a fixed-length vector. The same text must
// always produce the same vector for a given model, since index rebuilds
// reuse stored embeddings.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length; an index is built for exactly one.
	Dimensions() int

	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

package driven

import (
	"context"
	"time"
)

// IndexArtifacts is one persisted generation of the question index.
// Index and IDMap always belong to the same generation: IDMap[i] is the
// question id stored at index position i.
type IndexArtifacts struct {
	// Generation uniquely identifies this build.
	Generation string

	// Index is the serialised VectorIndex.
	Index []byte

	// IDMap maps index position to question id.
	IDMap []string

	// Model is the embedding model that produced the vectors.
	Model string

	// Dimensions is the vector size.
	Dimensions int

	// CreatedAt is when the generation was written.
	CreatedAt time.Time
}

// IndexArtifactStore persists index generations. Save must publish the index
// and id map together: readers see either the previous pair or the new pair,
// never a mix.
type IndexArtifactStore interface {
	// Load returns the current generation.
	// Returns domain.ErrNotFound if none has been published, and
	// domain.ErrCorruptIndex if the published files are missing or unreadable.
	Load(ctx context.Context) (*IndexArtifacts, error)

	// Save writes and atomically publishes a new generation, returning its id.
	Save(ctx context.Context, artifacts IndexArtifacts) (string, error)
}

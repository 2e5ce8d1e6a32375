package domain

import "errors"

// Sentinel errors shared across layers. Adapters wrap them with %w so
// callers can branch with errors.Is; driving adapters map them to exit
// codes and HTTP statuses.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnsupportedType = errors.New("unsupported type")

	// Optional collaborators that were not configured or cannot be reached.
	ErrLLMUnavailable       = errors.New("LLM service unavailable")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable means no index generation has been loaded
	// or built yet.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	ErrRebuildInProgress = errors.New("index rebuild in progress")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrCorruptIndex covers artefacts that fail to decode and artefacts
	// whose vector count disagrees with the id map.
	ErrCorruptIndex = errors.New("corrupt index artefacts")
)

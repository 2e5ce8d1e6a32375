package driven

import (
	"context"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// DocumentStore persists raw documents and extracted questions.
// Raw documents are unique by Source; questions are unique by ID.
type DocumentStore interface {
	// UpsertRawDocument inserts the document or updates the record with the
	// same Source in place. A record whose ContentHash is unchanged is left
	// alone and reported as domain.UpsertUnchanged.
	UpsertRawDocument(ctx context.Context, doc domain.RawDocument) (domain.UpsertStatus, error)

	// GetRawDocument retrieves a raw document by source.
	// Returns domain.ErrNotFound if it does not exist.
	GetRawDocument(ctx context.Context, source string) (*domain.RawDocument, error)

	// ListRawDocuments returns every raw document in insertion order.
	ListRawDocuments(ctx context.Context) ([]domain.RawDocument, error)

	// UpsertQuestion inserts the question or replaces the record with the same ID.
	UpsertQuestion(ctx context.Context, q domain.Question) error

	// GetQuestions returns the questions for the given ids in request order.
	// Ids with no stored question are skipped.
	GetQuestions(ctx context.Context, ids []string) ([]domain.Question, error)

	// FindQuestions returns every question matching the filter in the store's
	// native (insertion) order. An empty filter returns all questions.
	FindQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)

	// SaveEmbeddings caches vectors against question ids.
	SaveEmbeddings(ctx context.Context, vectors map[string][]float32) error

	// Stats summarises stored records.
	Stats(ctx context.Context) (domain.CorpusStats, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

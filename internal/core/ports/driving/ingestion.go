package driving

import (
	"context"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// IngestionService drives raw documents through segmentation, extraction
// and storage.
type IngestionService interface {
	// Ingest processes one document and reports how many questions were stored.
	Ingest(ctx context.Context, doc domain.RawDocument) (domain.IngestResult, error)

	// IngestAll processes documents concurrently. Results are in input order.
	IngestAll(ctx context.Context, docs []domain.RawDocument) ([]domain.IngestResult, error)
}

// CorpusService reports on and exports stored records.
type CorpusService interface {
	// Stats summarises the Document Store.
	Stats(ctx context.Context) (domain.CorpusStats, error)

	// ExportByYear writes every raw document to the archive, returning the count.
	ExportByYear(ctx context.Context) (int, error)
}

package services

import (
	"context"
	"fmt"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
	"github.com/UceeCode/waec-ai/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService reports on and exports stored records.
type CorpusService struct {
	store   driven.DocumentStore
	archive driven.DocumentArchive
}

// NewCorpusService creates a corpus service. archive may be nil when
// exporting is not needed.
func NewCorpusService(store driven.DocumentStore, archive driven.DocumentArchive) *CorpusService {
	return &CorpusService{store: store, archive: archive}
}

// Stats summarises the Document Store.
func (s *CorpusService) Stats(ctx context.Context) (domain.CorpusStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.CorpusStats{}, fmt.Errorf("corpus stats: %w", err)
	}
	return stats, nil
}

// ExportByYear writes every raw document to the archive. It stops at the
// first write failure and returns how many documents were written.
func (s *CorpusService) ExportByYear(ctx context.Context) (int, error) {
	if s.archive == nil {
		return 0, fmt.Errorf("%w: no export archive configured", domain.ErrInvalidInput)
	}

	docs, err := s.store.ListRawDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list raw documents: %w", err)
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		p, err := s.archive.Write(ctx, doc)
		if err != nil {
			return i, fmt.Errorf("export %s: %w", doc.Source, err)
		}
		logger.Debug("Exported %s to %s", doc.Source, p)
	}
	logger.Info("Exported %d raw documents", len(docs))
	return len(docs), nil
}

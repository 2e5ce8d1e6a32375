package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
	"github.com/UceeCode/waec-ai/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultIngestWorkers is the number of documents processed concurrently by IngestAll.
const DefaultIngestWorkers = 4

// IngestionService drives raw documents through segmentation, field
// extraction and storage.
type IngestionService struct {
	store     driven.DocumentStore
	segmenter driven.Segmenter
	extractor driven.FieldExtractor
	workers   int
	now       func() time.Time
}

// IngestionOption configures an IngestionService.
type IngestionOption func(*IngestionService)

// WithIngestWorkers sets how many documents IngestAll processes at once.
func WithIngestWorkers(n int) IngestionOption {
	return func(s *IngestionService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithIngestClock overrides the clock used to default CollectedAt.
func WithIngestClock(now func() time.Time) IngestionOption {
	return func(s *IngestionService) {
		s.now = now
	}
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	store driven.DocumentStore,
	segmenter driven.Segmenter,
	extractor driven.FieldExtractor,
	opts ...IngestionOption,
) *IngestionService {
	s := &IngestionService{
		store:     store,
		segmenter: segmenter,
		extractor: extractor,
		workers:   DefaultIngestWorkers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest stores the document and every question extracted from it.
// Re-ingesting the same source updates records in place. Question upsert
// failures are counted in the result rather than returned.
func (s *IngestionService) Ingest(ctx context.Context, doc domain.RawDocument) (domain.IngestResult, error) {
	doc.Source = strings.TrimSpace(doc.Source)
	if doc.Source == "" {
		return domain.IngestResult{}, fmt.Errorf("%w: document source is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return domain.IngestResult{}, fmt.Errorf("%w: document %s has no content", domain.ErrInvalidInput, doc.Source)
	}

	result := domain.IngestResult{Source: doc.Source}

	if doc.ContentHash == "" {
		doc.ContentHash = domain.ContentHash(doc.Content)
	}
	if doc.CollectedAt.IsZero() {
		doc.CollectedAt = s.now().UTC()
	}
	if doc.Filename == "" {
		doc.Filename = path.Base(strings.SplitN(doc.Source, "#", 2)[0])
	}
	if doc.Year == nil {
		if year, ok := s.extractor.InferYear(doc.Filename, doc.Content); ok {
			doc.Year = &year
		}
	}

	status, err := s.store.UpsertRawDocument(ctx, doc)
	if err != nil {
		return result, fmt.Errorf("store raw document %s: %w", doc.Source, err)
	}
	result.Status = status

	subject, ok := s.extractor.InferSubject(doc.Content, doc.Filename)
	if !ok {
		subject = domain.UnknownSubject
	}

	blocks := s.segmenter.Segment(doc.Content)
	logger.Debug("Segmented %s: %d candidate blocks", doc.Source, len(blocks))

	for _, block := range blocks {
		q, err := s.extractor.Extract(block, doc.Source)
		if errors.Is(err, domain.ErrInvalidInput) {
			logger.Info("Skipping block %d in %s: %v", block.Number, doc.Source, err)
			continue
		}
		if err != nil {
			logger.Warn("Extracting block %d in %s: %v", block.Number, doc.Source, err)
			continue
		}
		result.Found++

		q.Subject = subject
		q.Year = doc.Year
		if err := s.store.UpsertQuestion(ctx, q); err != nil {
			logger.Warn("Storing question %s from %s: %v", q.ID, doc.Source, err)
			result.Failed++
			continue
		}
		result.Stored++
	}

	logger.Info("Ingested %s (%s): %d found, %d stored, %d failed",
		doc.Source, result.Status, result.Found, result.Stored, result.Failed)
	return result, nil
}

// IngestAll processes documents concurrently. Results are in input order;
// a document that failed has only its Source set. Per-document errors are
// joined into the returned error. An unreachable store fails immediately.
func (s *IngestionService) IngestAll(ctx context.Context, docs []domain.RawDocument) ([]domain.IngestResult, error) {
	logger.Section("Ingestion")
	defer logger.Elapsed("ingestion", time.Now())

	if err := s.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("document store unreachable: %w", err)
	}

	results := make([]domain.IngestResult, len(docs))
	errs := make([]error, len(docs))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				results[i] = domain.IngestResult{Source: doc.Source}
				return nil
			}
			res, err := s.Ingest(ctx, doc)
			results[i] = res
			if err != nil {
				results[i].Source = doc.Source
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

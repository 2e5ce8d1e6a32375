package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Records keep the position of their first insert, so listings come back in
// insertion order.
type DocumentStore struct {
	mu sync.RWMutex

	raw      map[string]domain.RawDocument
	rawOrder []string

	questions     map[string]domain.Question
	questionOrder []string

	closed bool
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		raw:       make(map[string]domain.RawDocument),
		questions: make(map[string]domain.Question),
	}
}

// UpsertRawDocument stores or updates a raw document keyed by Source.
func (s *DocumentStore) UpsertRawDocument(_ context.Context, doc domain.RawDocument) (domain.UpsertStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", errClosed
	}

	existing, ok := s.raw[doc.Source]
	switch {
	case !ok:
		s.rawOrder = append(s.rawOrder, doc.Source)
		s.raw[doc.Source] = copyRaw(doc)
		return domain.UpsertInserted, nil
	case existing.ContentHash == doc.ContentHash:
		return domain.UpsertUnchanged, nil
	default:
		s.raw[doc.Source] = copyRaw(doc)
		return domain.UpsertUpdated, nil
	}
}

// GetRawDocument retrieves a raw document by source.
func (s *DocumentStore) GetRawDocument(_ context.Context, source string) (*domain.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.raw[source]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyRaw(doc)
	return &out, nil
}

// ListRawDocuments returns every raw document in insertion order.
func (s *DocumentStore) ListRawDocuments(_ context.Context) ([]domain.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.RawDocument, 0, len(s.rawOrder))
	for _, source := range s.rawOrder {
		docs = append(docs, copyRaw(s.raw[source]))
	}
	return docs, nil
}

// UpsertQuestion stores or replaces a question keyed by ID. A cached
// embedding survives the replace when the incoming record carries none.
func (s *DocumentStore) UpsertQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed
	}

	existing, ok := s.questions[q.ID]
	if !ok {
		s.questionOrder = append(s.questionOrder, q.ID)
	} else if q.Embedding == nil {
		q.Embedding = existing.Embedding
	}
	s.questions[q.ID] = copyQuestion(q)
	return nil
}

// GetQuestions returns the questions for ids in request order.
func (s *DocumentStore) GetQuestions(_ context.Context, ids []string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			out = append(out, copyQuestion(q))
		}
	}
	return out, nil
}

// FindQuestions returns matching questions in insertion order.
func (s *DocumentStore) FindQuestions(_ context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter = filter.Normalised()
	var out []domain.Question
	for _, id := range s.questionOrder {
		q := s.questions[id]
		if filter.Matches(q) {
			out = append(out, copyQuestion(q))
		}
	}
	return out, nil
}

// SaveEmbeddings caches vectors against question ids. Unknown ids are ignored.
func (s *DocumentStore) SaveEmbeddings(_ context.Context, vectors map[string][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, vec := range vectors {
		q, ok := s.questions[id]
		if !ok {
			continue
		}
		q.Embedding = slices.Clone(vec)
		s.questions[id] = q
	}
	return nil
}

// Stats summarises stored records.
func (s *DocumentStore) Stats(_ context.Context) (domain.CorpusStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.CorpusStats{
		RawDocuments: len(s.raw),
		Questions:    len(s.questions),
		BySubject:    make(map[string]int),
		ByYear:       make(map[string]int),
	}
	for _, q := range s.questions {
		stats.BySubject[q.Subject]++
		stats.ByYear[domain.YearKey(q.Year)]++
	}
	return stats, nil
}

// Ping reports whether the store is still open.
func (s *DocumentStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return nil
}

// Close marks the store closed. Reads keep working.
func (s *DocumentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func copyRaw(doc domain.RawDocument) domain.RawDocument {
	if doc.Year != nil {
		y := *doc.Year
		doc.Year = &y
	}
	doc.Metadata = maps.Clone(doc.Metadata)
	return doc
}

func copyQuestion(q domain.Question) domain.Question {
	if q.Year != nil {
		y := *q.Year
		q.Year = &y
	}
	q.Options = slices.Clone(q.Options)
	q.Embedding = slices.Clone(q.Embedding)
	return q
}

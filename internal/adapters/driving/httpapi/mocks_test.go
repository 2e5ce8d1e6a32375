package httpapi

import (
	"context"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error
	last    domain.RetrieveRequest
}

func (m *mockRetrievalService) Retrieve(_ context.Context, req domain.RetrieveRequest) ([]domain.RetrievalResult, error) {
	m.last = req
	return m.results, m.err
}

type mockIndexService struct {
	status     domain.IndexStatus
	rebuildErr error
	rebuilds   int
}

func (m *mockIndexService) Rebuild(_ context.Context) (domain.IndexStatus, error) {
	m.rebuilds++
	if m.rebuildErr != nil {
		return domain.IndexStatus{}, m.rebuildErr
	}
	return m.status, nil
}

func (m *mockIndexService) IndexStatus() domain.IndexStatus {
	return m.status
}

type mockIngestionService struct {
	result    domain.IngestResult
	err       error
	allErr    error
	ingested  []domain.RawDocument
	unreached bool
}

func (m *mockIngestionService) Ingest(_ context.Context, doc domain.RawDocument) (domain.IngestResult, error) {
	m.ingested = append(m.ingested, doc)
	if m.err != nil {
		return domain.IngestResult{}, m.err
	}
	result := m.result
	result.Source = doc.Source
	return result, nil
}

func (m *mockIngestionService) IngestAll(_ context.Context, docs []domain.RawDocument) ([]domain.IngestResult, error) {
	if m.unreached {
		return nil, m.allErr
	}
	results := make([]domain.IngestResult, len(docs))
	for i, doc := range docs {
		m.ingested = append(m.ingested, doc)
		results[i] = domain.IngestResult{Source: doc.Source, Status: domain.UpsertInserted, Found: 1, Stored: 1}
	}
	return results, m.allErr
}

type mockCorpusService struct {
	stats domain.CorpusStats
	err   error
}

func (m *mockCorpusService) Stats(_ context.Context) (domain.CorpusStats, error) {
	return m.stats, m.err
}

func (m *mockCorpusService) ExportByYear(_ context.Context) (int, error) {
	return 0, m.err
}

type mockAnswerService struct {
	answer *domain.Answer
	err    error
	last   domain.RetrieveRequest
}

func (m *mockAnswerService) Answer(_ context.Context, req domain.RetrieveRequest) (*domain.Answer, error) {
	m.last = req
	return m.answer, m.err
}

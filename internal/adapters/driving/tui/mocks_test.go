package tui

import (
	"context"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ domain.RetrieveRequest) ([]domain.RetrievalResult, error) {
	return m.results, m.err
}

type mockIndexService struct {
	status domain.IndexStatus
}

func (m *mockIndexService) Rebuild(_ context.Context) (domain.IndexStatus, error) {
	return m.status, nil
}

func (m *mockIndexService) IndexStatus() domain.IndexStatus {
	return m.status
}

type mockCorpusService struct {
	stats domain.CorpusStats
}

func (m *mockCorpusService) Stats(_ context.Context) (domain.CorpusStats, error) {
	return m.stats, nil
}

func (m *mockCorpusService) ExportByYear(_ context.Context) (int, error) {
	return 0, nil
}

type mockAnswerService struct{}

func (m *mockAnswerService) Answer(_ context.Context, req domain.RetrieveRequest) (*domain.Answer, error) {
	return &domain.Answer{Text: "answer to " + req.Query}, nil
}

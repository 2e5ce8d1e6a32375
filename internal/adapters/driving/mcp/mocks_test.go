package mcp

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

func sampleResult() domain.RetrievalResult {
	year := 2015
	return domain.RetrievalResult{
		Question: domain.Question{
			ID:             "q-1",
			Number:         7,
			Stem:           "Which of the following is a vector quantity?",
			Type:           domain.QuestionTypeMultipleChoice,
			Options:        []domain.QuestionOption{{Letter: "A", Text: "Mass"}, {Letter: "B", Text: "Velocity"}},
			Subject:        domain.SubjectPhysics,
			Year:           &year,
			DocumentSource: "physics_2015.pdf#page=2",
		},
		Distance: 0.25,
		Ranked:   true,
	}
}

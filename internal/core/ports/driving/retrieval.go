package driving

import (
	"context"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// RetrievalService answers "top-k questions most relevant to a query,
// optionally constrained by subject and year".
type RetrievalService interface {
	// Retrieve returns up to req.K questions, most relevant first.
	// An absent or empty index yields an empty result, not an error.
	Retrieve(ctx context.Context, req domain.RetrieveRequest) ([]domain.RetrievalResult, error)
}

// IndexService controls the question index lifecycle.
type IndexService interface {
	// Rebuild re-embeds every stored question and publishes a new generation.
	Rebuild(ctx context.Context) (domain.IndexStatus, error)

	// IndexStatus describes the loaded generation.
	IndexStatus() domain.IndexStatus
}

// AnswerService generates an answer grounded in retrieved questions.
type AnswerService interface {
	Answer(ctx context.Context, req domain.RetrieveRequest) (*domain.Answer, error)
}

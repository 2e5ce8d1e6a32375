package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
	"github.com/UceeCode/waec-ai/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// NoContextAnswer is returned when retrieval finds nothing to ground an answer in.
const NoContextAnswer = "No matching past questions were found for this query."

// defaultAnswerPrompt is used when no prompt store is configured.
const defaultAnswerPrompt = `You are a WAEC exam tutor. Use the past exam questions below as context.

Past questions:
%s

Student question: %s

Answer clearly and concisely. Refer to the past questions by number where they help.`

const answerSystemPrompt = "Answer from the past exam questions you are given. If they do not cover the question, say so."

// AnswerService generates answers grounded in retrieved past questions.
type AnswerService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	opts      driven.GenerateOptions
}

// Ensure AnswerService can take custom prompts.
var _ driven.PromptStoreAware = (*AnswerService)(nil)

// NewAnswerService creates an answer service. llm may be nil, in which case
// Answer returns domain.ErrLLMUnavailable.
func NewAnswerService(retrieval driving.RetrievalService, llm driven.LLMService) *AnswerService {
	return &AnswerService{
		retrieval: retrieval,
		llm:       llm,
		opts: driven.GenerateOptions{
			System:      answerSystemPrompt,
			MaxTokens:   512,
			Temperature: 0.2,
		},
	}
}

// SetPromptStore sets the store the answer template is loaded from.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Answer retrieves context questions for the request and asks the LLM to
// answer the query using them. No context is a normal outcome: the LLM is
// not called and a fixed message is returned.
func (s *AnswerService) Answer(ctx context.Context, req domain.RetrieveRequest) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	req.Query = query

	logger.Section("Answer")

	results, err := s.retrieval.Retrieve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if len(results) == 0 {
		logger.Info("No context found for %q", query)
		return &domain.Answer{
			Text:    NoContextAnswer,
			Context: []domain.RetrievalResult{},
			Model:   s.llm.ModelName(),
		}, nil
	}

	prompt := fmt.Sprintf(s.template(), formatContext(results), query)
	logger.Debug("Answer prompt has %d context questions", len(results))

	text, err := s.llm.Generate(ctx, prompt, s.opts)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:    text,
		Context: results,
		Model:   s.llm.ModelName(),
	}, nil
}

func (s *AnswerService) template() string {
	if s.prompts == nil {
		return defaultAnswerPrompt
	}
	tmpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil || strings.Count(tmpl, "%s") != 2 {
		logger.Warn("Answer prompt unusable, using default: %v", err)
		return defaultAnswerPrompt
	}
	return tmpl
}

// formatContext renders results as a numbered list with options.
func formatContext(results []domain.RetrievalResult) string {
	var b strings.Builder
	for i, r := range results {
		q := r.Question
		fmt.Fprintf(&b, "%d. [%s", i+1, q.Subject)
		if q.Year != nil {
			fmt.Fprintf(&b, " %d", *q.Year)
		}
		fmt.Fprintf(&b, "] %s\n", q.Stem)
		for _, opt := range q.Options {
			fmt.Fprintf(&b, "   %s) %s\n", opt.Letter, opt.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

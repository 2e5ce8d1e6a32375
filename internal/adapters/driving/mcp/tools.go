package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve_questions tool.
type RetrieveInput struct {
	Query   string `json:"query,omitempty" jsonschema:"free-text query; omit to list questions by subject and year only"`
	Subject string `json:"subject,omitempty" jsonschema:"subject filter, e.g. physics or agricultural_science"`
	Year    int    `json:"year,omitempty" jsonschema:"exam year filter, e.g. 2015"`
	K       int    `json:"k,omitempty" jsonschema:"maximum number of questions to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve_questions tool.
type RetrieveOutput struct {
	Questions []QuestionOutput `json:"questions"`
	Count     int              `json:"count"`
}

// QuestionOutput is a single retrieved question.
type QuestionOutput struct {
	ID       string   `json:"id"`
	Number   int      `json:"number"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Subject  string   `json:"subject"`
	Year     int      `json:"year,omitempty"`
	Source   string   `json:"source"`
	Distance float32  `json:"distance,omitempty"`
}

// StatusInput is the (empty) input schema for corpus_status.
type StatusInput struct{}

// StatusOutput is the output schema for corpus_status.
type StatusOutput struct {
	Corpus *domain.CorpusStats `json:"corpus,omitempty"`
	Index  *domain.IndexStatus `json:"index,omitempty"`
}

// AnswerInput is the input schema for answer_question.
type AnswerInput struct {
	Query   string `json:"query" jsonschema:"the student's question"`
	Subject string `json:"subject,omitempty" jsonschema:"restrict context to this subject"`
	Year    int    `json:"year,omitempty" jsonschema:"restrict context to this exam year"`
	K       int    `json:"k,omitempty" jsonschema:"number of past questions to use as context (default 5)"`
}

// AnswerOutput is the output schema for answer_question.
type AnswerOutput struct {
	Answer  string           `json:"answer"`
	Model   string           `json:"model,omitempty"`
	Context []QuestionOutput `json:"context"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_questions",
		Description: "Find past WAEC exam questions by meaning, optionally filtered by subject and year",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "corpus_status",
		Description: "Count stored documents and questions by subject and year, and describe the loaded index",
	}, s.handleStatus)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "answer_question",
			Description: "Answer a student's question using similar past exam questions as context",
		}, s.handleAnswer)
	}
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	results, err := s.ports.Retrieval.Retrieve(ctx, toRequest(input.Query, input.Subject, input.Year, input.K))
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Questions: toQuestionOutputs(results),
		Count:     len(results),
	}, nil
}

func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	var out StatusOutput
	if s.ports.Corpus != nil {
		stats, err := s.ports.Corpus.Stats(ctx)
		if err != nil {
			return nil, StatusOutput{}, err
		}
		out.Corpus = &stats
	}
	if s.ports.Index != nil {
		status := s.ports.Index.IndexStatus()
		out.Index = &status
	}
	return nil, out, nil
}

func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, AnswerOutput{}, errors.New("query is required")
	}

	answer, err := s.ports.Answer.Answer(ctx, toRequest(input.Query, input.Subject, input.Year, input.K))
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	return nil, AnswerOutput{
		Answer:  answer.Text,
		Model:   answer.Model,
		Context: toQuestionOutputs(answer.Context),
	}, nil
}

// toRequest maps tool arguments to a retrieval request. Zero values mean
// "no constraint".
func toRequest(query, subject string, year, k int) domain.RetrieveRequest {
	req := domain.RetrieveRequest{Query: query, K: k}
	if subject != "" {
		req.Filter.Subject = &subject
	}
	if year != 0 {
		req.Filter.Year = &year
	}
	return req
}

func toQuestionOutputs(results []domain.RetrievalResult) []QuestionOutput {
	out := make([]QuestionOutput, len(results))
	for i := range results {
		q := results[i].Question
		options := make([]string, len(q.Options))
		for j, opt := range q.Options {
			options[j] = opt.Letter + ") " + opt.Text
		}
		out[i] = QuestionOutput{
			ID:       q.ID,
			Number:   q.Number,
			Text:     q.Stem,
			Type:     q.Type.String(),
			Options:  options,
			Subject:  q.Subject,
			Source:   q.DocumentSource,
			Distance: results[i].Distance,
		}
		if q.Year != nil {
			out[i].Year = *q.Year
		}
	}
	return out
}

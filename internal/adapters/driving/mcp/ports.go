package mcp

import (
	"errors"

	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
)

var (
	ErrNilPorts                = errors.New("mcp: ports are nil")
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
)

// Ports are the services behind the tools. Only Retrieval is required;
// corpus_status reports whatever of Index and Corpus is present, and
// answer_question exists only when Answer is set.
type Ports struct {
	Retrieval driving.RetrievalService
	Index     driving.IndexService
	Corpus    driving.CorpusService
	Answer    driving.AnswerService
}

func (p *Ports) Validate() error {
	if p == nil {
		return ErrNilPorts
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

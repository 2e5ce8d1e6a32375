// Package tui provides an interactive terminal browser for the question bank.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Retrieval answers queries. Required.
	Retrieval driving.RetrievalService

	// Index reports the loaded generation for the status view.
	Index driving.IndexService

	// Corpus reports stored counts for the status view.
	Corpus driving.CorpusService

	// Answer generates grounded answers. Optional.
	Answer driving.AnswerService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// RetrievalCompleted carries retrieval results back to the model.
type RetrievalCompleted struct {
	Request domain.RetrieveRequest
	Results []domain.RetrievalResult
	Err     error
}

// QuestionSelected opens a result in the question view.
type QuestionSelected struct {
	Result domain.RetrievalResult
}

// AnswerCompleted carries a generated answer.
type AnswerCompleted struct {
	Answer *domain.Answer
	Err    error
}

// StatusLoaded carries corpus and index status. Either pointer may be nil
// when the matching service is not configured.
type StatusLoaded struct {
	Corpus *domain.CorpusStats
	Index  *domain.IndexStatus
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the query input and results list.
	ViewSearch ViewType = iota
	// ViewQuestion shows one question in full.
	ViewQuestion
	// ViewStatus shows corpus and index counts.
	ViewStatus
	// ViewHelp lists keybindings.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewQuestion:
		return "question"
	case ViewStatus:
		return "status"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

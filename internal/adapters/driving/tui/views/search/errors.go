package search

import "errors"

var (
	// ErrNoRetrievalService indicates that no retrieval service was provided.
	ErrNoRetrievalService = errors.New("retrieval service is required")

	// ErrNoAnswerService indicates that answering is not configured.
	ErrNoAnswerService = errors.New("answer service not configured (set llm.provider)")
)

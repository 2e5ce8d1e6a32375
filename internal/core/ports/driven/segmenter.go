package driven

import "github.com/UceeCode/waec-ai/internal/core/domain"

// Segmenter converts raw document text into candidate question blocks.
// An empty result is valid for documents with no recognisable markers.
type Segmenter interface {
	Segment(rawText string) []domain.CandidateBlock
}

// FieldExtractor turns one candidate block into a Question.
type FieldExtractor interface {
	// Extract splits stem from options, classifies the question and computes
	// its ID. Returns domain.ErrInvalidInput when the block holds no usable stem.
	Extract(block domain.CandidateBlock, source string) (domain.Question, error)

	// InferSubject matches text and filename against the subject vocabulary.
	InferSubject(text, filename string) (string, bool)

	// InferYear finds the exam year from the filename, then the content.
	InferYear(filename, content string) (int, bool)
}

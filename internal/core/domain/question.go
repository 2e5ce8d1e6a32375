package domain

import (
	"crypto/md5" //nolint:gosec // fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// QuestionType classifies the expected answer format of a question.
type QuestionType string

// Question types, in classification precedence order.
const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeCalculation    QuestionType = "calculation"
	QuestionTypeEssay          QuestionType = "essay"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
)

// IsValid returns true if the question type is recognised.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeCalculation, QuestionTypeEssay,
		QuestionTypeTrueFalse, QuestionTypeShortAnswer:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t QuestionType) String() string {
	return string(t)
}

// MinStemLength is the shortest stem accepted for a question.
const MinStemLength = 10

// QuestionOption is a single lettered answer choice.
type QuestionOption struct {
	// Letter is the upper-case option letter (A-E).
	Letter string `json:"letter"`

	// Text is the option body.
	Text string `json:"text"`
}

// CandidateBlock is a contiguous span of cleaned text hypothesised to hold
// exactly one question plus its options.
type CandidateBlock struct {
	// Number is the question numeral captured from the marker.
	Number int

	// Text is the trimmed body following the marker.
	Text string

	// Start is the byte offset of the marker in the cleaned text.
	Start int

	// End is the byte offset where the body stops.
	End int

	// Strategy names the numbering style that produced the block.
	Strategy string
}

// Question is a structured question extracted from a raw document.
type Question struct {
	// ID is the deterministic fingerprint of (source, number, stem).
	ID string `json:"question_id"`

	// Number is the question numeral in the source document.
	Number int `json:"question_number"`

	// Stem is the question text without its options.
	Stem string `json:"question_text"`

	// Type is the classified answer format.
	Type QuestionType `json:"question_type"`

	// Options are the answer choices in document order.
	Options []QuestionOption `json:"options"`

	// Subject is drawn from the closed subject vocabulary, or "unknown".
	Subject string `json:"subject"`

	// Year is the exam year, if known.
	Year *int `json:"year,omitempty"`

	// DocumentSource is the Source of the RawDocument the question came from.
	DocumentSource string `json:"document_source"`

	// Embedding is the cached vector from the last index rebuild.
	Embedding []float32 `json:"-"`

	// ProcessedAt is when the question was last extracted.
	ProcessedAt time.Time `json:"processed_at"`
}

// EmbeddingText returns the text embedded for similarity search:
// the stem followed by one "X) text" line per option.
func (q Question) EmbeddingText() string {
	if len(q.Options) == 0 {
		return q.Stem
	}
	var b strings.Builder
	b.WriteString(q.Stem)
	for _, opt := range q.Options {
		b.WriteString("\n")
		b.WriteString(opt.Letter)
		b.WriteString(") ")
		b.WriteString(opt.Text)
	}
	return b.String()
}

// QuestionID returns the stable fingerprint for a question. Equal inputs always
// produce equal ids, so re-extracting an unchanged document upserts in place.
func QuestionID(source string, number int, stem string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s-%d-%s", source, number, stem))) //nolint:gosec // fingerprint only
	return hex.EncodeToString(sum[:])
}

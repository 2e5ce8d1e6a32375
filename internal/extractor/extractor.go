package extractor

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/logger"
)

// longBodyRunes is the body length above which a block whose option region
// parses to nothing is treated as a free-response question in full.
const longBodyRunes = 200

// Verify interface compliance.
var _ driven.FieldExtractor = (*Extractor)(nil)

// Extractor implements driven.FieldExtractor.
type Extractor struct {
	now func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the time source used for ProcessedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract splits a candidate block into stem and options and classifies it.
// Subject and Year are left for the caller, which knows the whole document.
func (e *Extractor) Extract(block domain.CandidateBlock, source string) (domain.Question, error) {
	stem, options := splitStem(block.Text)
	if utf8.RuneCountInString(stem) < domain.MinStemLength {
		return domain.Question{}, fmt.Errorf("question %d: stem %q too short: %w", block.Number, stem, domain.ErrInvalidInput)
	}

	q := domain.Question{
		ID:             domain.QuestionID(source, block.Number, stem),
		Number:         block.Number,
		Stem:           stem,
		Type:           Classify(stem, options),
		Options:        options,
		Subject:        domain.UnknownSubject,
		DocumentSource: source,
		ProcessedAt:    e.now().UTC(),
	}
	logger.Debug("extracted question %d from %s: type=%s options=%d", q.Number, source, q.Type, len(q.Options))
	return q, nil
}

// InferSubject implements driven.FieldExtractor.
func (e *Extractor) InferSubject(text, filename string) (string, bool) {
	return InferSubject(text, filename)
}

// InferYear implements driven.FieldExtractor.
func (e *Extractor) InferYear(filename, content string) (int, bool) {
	return InferYear(filename, content)
}

// splitStem separates the question stem from its options. Line-leading
// option markers are preferred; options run together on one line are the
// fallback.
func splitStem(body string) (string, []domain.QuestionOption) {
	if loc := optionLine.FindStringIndex(body); loc != nil {
		options := parseOptions(body[loc[0]:])
		if len(options) == 0 && utf8.RuneCountInString(body) > longBodyRunes {
			return domain.NormaliseContent(body), nil
		}
		return domain.NormaliseContent(body[:loc[0]]), options
	}

	if options, cut, ok := parseInlineOptions(body); ok {
		return domain.NormaliseContent(body[:cut]), options
	}
	return domain.NormaliseContent(body), nil
}

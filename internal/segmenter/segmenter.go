package segmenter

import (
	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/logger"
)

// Ensure Segmenter implements the interface.
var _ driven.Segmenter = (*Segmenter)(nil)

// noMarkersLogThreshold is the cleaned length above which finding nothing is
// worth an info line.
const noMarkersLogThreshold = 100

// Segmenter runs the strategy cascade over cleaned text.
type Segmenter struct {
	strategies []Strategy
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithStrategies replaces the default cascade.
func WithStrategies(strategies ...Strategy) Option {
	return func(s *Segmenter) {
		if len(strategies) > 0 {
			s.strategies = strategies
		}
	}
}

// New creates a segmenter with the default cascade unless overridden.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{strategies: DefaultStrategies()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment cleans rawText and returns the blocks of the first strategy whose
// marker occurs in it. Block offsets refer to the cleaned text.
func (s *Segmenter) Segment(rawText string) []domain.CandidateBlock {
	cleaned := Clean(rawText)

	for _, strategy := range s.strategies {
		matched, blocks := strategy.Match(cleaned)
		if !matched {
			continue
		}
		logger.Debug("segmenter: %s strategy matched, %d usable blocks", strategy.Name(), len(blocks))
		if len(blocks) == 0 && len(cleaned) > noMarkersLogThreshold {
			logger.Info("segmenter: %s markers found but no usable blocks in %d chars", strategy.Name(), len(cleaned))
		}
		return blocks
	}

	if len(cleaned) > noMarkersLogThreshold {
		logger.Info("segmenter: no question markers in %d chars of text", len(cleaned))
	}
	return nil
}

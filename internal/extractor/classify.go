package extractor

import (
	"regexp"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

var (
	calculationCue = regexp.MustCompile(`(?i)\b(?:calculate|find|solve|compute)\b|\bdetermine\s+the\s+value\s+of\b`)
	essayCue       = regexp.MustCompile(`(?i)\b(?:explain|describe|discuss|define|state|list|outline|differentiate)\b`)
	trueFalseCue   = regexp.MustCompile(`(?i)\btrue\s+or\s+false\b|\bcorrect\s+or\s+incorrect\b|\bidentify\s+the\s+true\s+statement\b`)
)

// Classify assigns a question type. Rules are evaluated in order and the
// first to match wins.
func Classify(stem string, options []domain.QuestionOption) domain.QuestionType {
	switch {
	case len(options) > 0:
		return domain.QuestionTypeMultipleChoice
	case calculationCue.MatchString(stem):
		return domain.QuestionTypeCalculation
	case essayCue.MatchString(stem):
		return domain.QuestionTypeEssay
	case trueFalseCue.MatchString(stem):
		return domain.QuestionTypeTrueFalse
	default:
		return domain.QuestionTypeShortAnswer
	}
}

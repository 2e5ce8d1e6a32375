package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// minOptionLength is the shortest option text kept, except for single
// letters or digits which are legitimate answers ("4", "x").
const minOptionLength = 2

// optionStyle is one lettered marker convention.
type optionStyle struct {
	name   string
	marker *regexp.Regexp
}

// optionStyles are tried in order; only the first that matches is used.
var optionStyles = []optionStyle{
	{name: "dot", marker: regexp.MustCompile(`(?m)^[ \t]*([A-Ea-e])\.`)},
	{name: "paren", marker: regexp.MustCompile(`(?m)^[ \t]*([A-Ea-e])\)`)},
}

var (
	// optionLine finds the first line starting with an option marker.
	optionLine = regexp.MustCompile(`(?m)^[ \t]*[A-Ea-e][.)]`)

	// numberedLine ends an option at the next numbered question.
	numberedLine = regexp.MustCompile(`(?m)^[ \t]*\d+\.`)

	// inlineMarker finds options run together on one line: "A. 4 B. 6".
	inlineMarker = regexp.MustCompile(`(?:^|\s)([A-E])[.)]\s+`)
)

// parseOptions applies the style cascade to an options region.
func parseOptions(region string) []domain.QuestionOption {
	for _, style := range optionStyles {
		locs := style.marker.FindAllStringSubmatchIndex(region, -1)
		if len(locs) == 0 {
			continue
		}

		numbered := numberedLine.FindAllStringIndex(region, -1)
		var options []domain.QuestionOption
		for i, loc := range locs {
			start := loc[1]
			end := len(region)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			for _, n := range numbered {
				if n[0] >= start && n[0] < end {
					end = n[0]
					break
				}
			}

			text := domain.NormaliseContent(region[start:end])
			if !keepOption(text) {
				continue
			}
			options = append(options, domain.QuestionOption{
				Letter: strings.ToUpper(region[loc[2]:loc[3]]),
				Text:   text,
			})
		}
		return options
	}
	return nil
}

// parseInlineOptions looks for options embedded in a single run of text.
// It needs at least two markers in A, B, C order starting at A. cut is the
// offset where the stem ends.
func parseInlineOptions(text string) (options []domain.QuestionOption, cut int, ok bool) {
	locs := inlineMarker.FindAllStringSubmatchIndex(text, -1)

	var seq [][]int
	for _, loc := range locs {
		letter := text[loc[2]]
		if letter != byte('A'+len(seq)) {
			break
		}
		seq = append(seq, loc)
	}
	if len(seq) < 2 {
		return nil, 0, false
	}

	for i, loc := range seq {
		end := len(text)
		if i+1 < len(seq) {
			end = seq[i+1][0]
		}
		body := domain.NormaliseContent(text[loc[1]:end])
		if !keepOption(body) {
			continue
		}
		options = append(options, domain.QuestionOption{
			Letter: text[loc[2]:loc[3]],
			Text:   body,
		})
	}
	if len(options) == 0 {
		return nil, 0, false
	}
	return options, seq[0][2], true
}

func keepOption(text string) bool {
	if utf8.RuneCountInString(text) >= minOptionLength {
		return true
	}
	r, size := utf8.DecodeRuneInString(text)
	return size > 0 && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

package segmenter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// DefaultMinBodyLength is the shortest trimmed body kept as a candidate.
const DefaultMinBodyLength = 10

// Strategy recognises one numbering style.
type Strategy interface {
	// Name identifies the strategy in logs and on produced blocks.
	Name() string

	// Match reports whether the style's marker occurs in text at all, and
	// the usable candidate blocks it delimits. matched can be true with no
	// candidates when every block was filtered out.
	Match(text string) (matched bool, blocks []domain.CandidateBlock)
}

// bannerLines end a question body without being questions themselves.
var bannerLines = regexp.MustCompile(
	`(?im)^[ \t]*(?:SECTION[ \t]+[IVXLCDM]+\b|Questions[ \t]+\d+[ \t]*[-–][ \t]*\d+|Question[ \t]+\d+)`)

// MarkerStrategy delimits blocks by a line-anchored marker whose first
// capture group is the question numeral. A body runs from the end of its
// marker to the next marker, the next banner line, or end of text.
type MarkerStrategy struct {
	name    string
	marker  *regexp.Regexp
	minBody int
}

// NewMarkerStrategy builds a strategy from a marker pattern. The pattern
// must capture the numeral in group 1.
func NewMarkerStrategy(name, pattern string, minBody int) *MarkerStrategy {
	if minBody <= 0 {
		minBody = DefaultMinBodyLength
	}
	return &MarkerStrategy{
		name:    name,
		marker:  regexp.MustCompile(pattern),
		minBody: minBody,
	}
}

// DotStrategy matches "N." at the start of a line.
func DotStrategy() *MarkerStrategy {
	return NewMarkerStrategy("dot", `(?m)^[ \t]*(\d+)\.`, DefaultMinBodyLength)
}

// QuestionStrategy matches "QUESTION N:" or "Q N" at the start of a line.
func QuestionStrategy() *MarkerStrategy {
	return NewMarkerStrategy("question", `(?im)^[ \t]*(?:QUESTION|Q)[ \t]*(\d+)[ \t]*:?`, DefaultMinBodyLength)
}

// ParenStrategy matches "N)" at the start of a line.
func ParenStrategy() *MarkerStrategy {
	return NewMarkerStrategy("paren", `(?m)^[ \t]*(\d+)\)`, DefaultMinBodyLength)
}

// DefaultStrategies returns the cascade in precedence order.
func DefaultStrategies() []Strategy {
	return []Strategy{DotStrategy(), QuestionStrategy(), ParenStrategy()}
}

// Name returns the strategy name.
func (s *MarkerStrategy) Name() string {
	return s.name
}

// Match finds every marker and cuts the text between them into blocks.
func (s *MarkerStrategy) Match(text string) (bool, []domain.CandidateBlock) {
	markers := s.markers(text)
	if len(markers) == 0 {
		return false, nil
	}

	banners := bannerLines.FindAllStringIndex(text, -1)

	blocks := make([]domain.CandidateBlock, 0, len(markers))
	for i, loc := range markers {
		bodyStart := loc[1]
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		for _, b := range banners {
			if b[0] >= bodyStart && b[0] < end {
				end = b[0]
				break
			}
		}

		number, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || number < 1 {
			continue
		}

		body := strings.TrimSpace(text[bodyStart:end])
		if utf8.RuneCountInString(body) < s.minBody {
			continue
		}

		blocks = append(blocks, domain.CandidateBlock{
			Number:   number,
			Text:     body,
			Start:    loc[0],
			End:      end,
			Strategy: s.name,
		})
	}

	return true, blocks
}

// markers returns marker submatch locations, skipping decimals such as
// "2.5 kg" at the start of a wrapped line.
func (s *MarkerStrategy) markers(text string) [][]int {
	all := s.marker.FindAllStringSubmatchIndex(text, -1)
	out := all[:0]
	for _, loc := range all {
		if loc[1] < len(text) && isDigit(text[loc[1]]) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

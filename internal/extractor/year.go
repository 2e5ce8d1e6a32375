package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

var (
	examThenYear = regexp.MustCompile(`(?i)(?:waec|wassce|ssce)[_ -]*(\d{4})`)
	yearThenExam = regexp.MustCompile(`(?i)(\d{4})[_ -]*(?:waec|wassce|ssce)`)
	digitRun     = regexp.MustCompile(`\d+`)
)

// InferYear returns the exam year. Filename patterns are tried first and the
// first plausible year wins. Otherwise every standalone four-digit number in
// the content is considered and the largest plausible one is returned.
// Taking the largest is a guess: a paper that quotes later historical dates
// will be misdated.
func InferYear(filename, content string) (int, bool) {
	if year, ok := yearFromFilename(filename); ok {
		return year, true
	}
	return yearFromContent(content)
}

func yearFromFilename(filename string) (int, bool) {
	for _, pattern := range []*regexp.Regexp{examThenYear, yearThenExam} {
		for _, loc := range pattern.FindAllStringSubmatchIndex(filename, -1) {
			if year, ok := isolatedYear(filename, loc[2], loc[3]); ok {
				return year, true
			}
		}
	}
	for _, loc := range digitRun.FindAllStringIndex(filename, -1) {
		if year, ok := isolatedYear(filename, loc[0], loc[1]); ok {
			return year, true
		}
	}
	return 0, false
}

func yearFromContent(content string) (int, bool) {
	best, found := 0, false
	for _, loc := range digitRun.FindAllStringIndex(content, -1) {
		year, ok := isolatedYear(content, loc[0], loc[1])
		if ok && year > best {
			best, found = year, true
		}
	}
	return best, found
}

// isolatedYear parses s[start:end] as a year when it is exactly four digits
// not embedded in a longer number and falls within the plausible range.
func isolatedYear(s string, start, end int) (int, bool) {
	if end-start != 4 {
		return 0, false
	}
	if start > 0 && isDigit(s[start-1]) {
		return 0, false
	}
	if end < len(s) && isDigit(s[end]) {
		return 0, false
	}
	year, err := strconv.Atoi(s[start:end])
	if err != nil || !domain.IsPlausibleYear(year) {
		return 0, false
	}
	return year, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// filenameWords turns path separators and punctuation in a filename into
// spaces so keyword patterns see word boundaries.
func filenameWords(filename string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.', '/', '\\', '#', '=', '?', '&':
			return ' '
		}
		return r
	}, filename)
}

package segmenter

import (
	"regexp"
	"strings"
)

var (
	boilerplate = regexp.MustCompile(
		`(?i)(?:WAEC|WASSCE|SSCE)\s*PAST\s*QUESTIONS?|OBJECTIVE\s*TEST|ESSAY\s*TEST|\bSECTION[ \t]+[IVXLCDM]+\b`)
	instructionLines = regexp.MustCompile(`(?im)^[ \t]*(?:Instructions:|Time:|Paper[ \t]+\d+)[^\n]*(?:\n|$)`)
	horizontalSpace  = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLineRuns    = regexp.MustCompile(`\n{3,}`)
)

// Clean strips exam boilerplate and normalises whitespace while keeping
// single line breaks, which the numbering strategies anchor on.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = instructionLines.ReplaceAllString(text, "")
	text = boilerplate.ReplaceAllString(text, "")
	text = horizontalSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

package markdown

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown transcriptions of exam papers.
type Normaliser struct {
	now func() time.Time
}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{now: time.Now}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Normalise strips Markdown formatting and returns a single text document.
func (n *Normaliser) Normalise(_ context.Context, file driven.SourceFile) ([]domain.RawDocument, error) {
	content := stripMarkdown(strings.ReplaceAll(string(file.Content), "\r\n", "\n"))
	if content == "" {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrInvalidInput, file.URI)
	}

	filename := path.Base(file.URI)
	return []domain.RawDocument{{
		Source:      file.URI,
		Type:        domain.DocumentTypeText,
		Content:     content,
		Filename:    filename,
		CollectedAt: n.now().UTC(),
		Metadata: map[string]any{
			"filename":  filename,
			"mime_type": file.MIMEType,
			"format":    "markdown",
		},
	}}, nil
}

var (
	codeFences    = regexp.MustCompile("(?m)^[ \t]*```[^\n]*$")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	emphasis      = regexp.MustCompile(`(\*\*|__|\*)([^*\n]+?)(\*\*|__|\*)`)
	blockquote    = regexp.MustCompile(`(?m)^>[ \t]?`)
	horizontal    = regexp.MustCompile(`(?m)^[ \t]*[-*_]{3,}[ \t]*$`)
	bullets       = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	escapedMarker = regexp.MustCompile(`(?m)^([ \t]*\d+)\\\.`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes formatting while keeping numbered and lettered
// list markers, which carry question and option numbering.
func stripMarkdown(content string) string {
	content = codeFences.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquote.ReplaceAllString(content, "")
	content = horizontal.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "")
	content = escapedMarker.ReplaceAllString(content, "$1.")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

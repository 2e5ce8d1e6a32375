package html

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MinContentLength is the shortest extracted text accepted as a page.
const MinContentLength = 100

// Normaliser handles HTML pages.
type Normaliser struct {
	now func() time.Time
}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{now: time.Now}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Normalise extracts the page's main text as a single web document.
// Pages with less than MinContentLength characters of text are rejected.
func (n *Normaliser) Normalise(_ context.Context, file driven.SourceFile) ([]domain.RawDocument, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(file.Content))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", file.URI, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	content := extractContent(doc)
	if len([]rune(content)) < MinContentLength {
		return nil, fmt.Errorf("%w: %s has only %d characters of text", domain.ErrInvalidInput, file.URI, len([]rune(content)))
	}

	metadata := map[string]any{
		"content_type": file.MIMEType,
		"title":        title,
	}
	filename := path.Base(file.URI)
	if u, err := url.Parse(file.URI); err == nil && u.Host != "" {
		metadata["domain"] = u.Host
		filename = path.Base(u.Path)
	}

	return []domain.RawDocument{{
		Source:      file.URI,
		Type:        domain.DocumentTypeWeb,
		Content:     content,
		Filename:    filename,
		CollectedAt: n.now().UTC(),
		Metadata:    metadata,
	}}, nil
}

const blockElements = "p, div, li, tr, h1, h2, h3, h4, h5, h6, section, article, blockquote, pre, table, ol, ul"

var (
	horizontalSpace  = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	contentSelectors = []string{
		"#content", ".content", "#main-content", ".main-content",
		"#article", ".article", "#post", ".post",
		".entry-content", ".post-content", ".article-content",
		"[role='main']", ".page-content", "#page-content",
	}
)

// extractContent picks the main content area by trying, in order: article,
// main, common content selectors, substantial paragraphs, then body.
func extractContent(doc *goquery.Document) string {
	contentDoc := doc.Clone()
	contentDoc.Find("script, style, nav, header, footer, aside, iframe, noscript, form, button, svg").Remove()
	contentDoc.Find("br").ReplaceWithHtml("\n")
	contentDoc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
		s.AppendHtml("\n")
	})

	var content string
	if article := contentDoc.Find("article").First(); article.Length() > 0 {
		content = cleanText(article.Text())
	}
	if len(content) < MinContentLength {
		if main := contentDoc.Find("main").First(); main.Length() > 0 {
			content = cleanText(main.Text())
		}
	}
	if len(content) < MinContentLength {
		for _, selector := range contentSelectors {
			if elem := contentDoc.Find(selector).First(); elem.Length() > 0 {
				if text := cleanText(elem.Text()); len(text) > len(content) {
					content = text
				}
			}
		}
	}
	if len(content) < MinContentLength {
		var paragraphs []string
		contentDoc.Find("p").Each(func(_ int, s *goquery.Selection) {
			if text := cleanText(s.Text()); len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if joined := strings.Join(paragraphs, "\n"); len(joined) > len(content) {
			content = joined
		}
	}
	if len(content) < MinContentLength {
		if body := cleanText(contentDoc.Find("body").Text()); len(body) > len(content) {
			content = body
		}
	}
	return content
}

// cleanText collapses horizontal whitespace, trims each line and drops
// blank lines.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

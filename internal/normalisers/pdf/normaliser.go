// Package pdf provides a Normaliser for PDF exam papers. Each page with
// enough text becomes its own raw document keyed "<file>#page=N".
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MinPageLength is the shortest page text kept. Shorter pages are usually
// covers, blanks or scanned images without a text layer.
const MinPageLength = 50

// Normaliser handles PDF files.
type Normaliser struct {
	now func() time.Time
}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{now: time.Now}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Normalise extracts the text of every page. A file whose pages are all
// too short yields no documents and no error.
func (n *Normaliser) Normalise(ctx context.Context, file driven.SourceFile) ([]domain.RawDocument, error) {
	pages, err := readPages(ctx, file.Content)
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", file.URI, err)
	}
	return n.pageDocuments(file, pages), nil
}

// readPages returns the plain text of each page, in page order.
func readPages(ctx context.Context, content []byte) (pages []string, err error) {
	defer func() {
		// The parser panics on some malformed streams.
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed pdf: %v", domain.ErrInvalidInput, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	total := r.NumPage()
	pages = make([]string, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("Extracting page %d: %v", i, err)
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

// pageDocuments builds one raw document per page with enough text.
func (n *Normaliser) pageDocuments(file driven.SourceFile, pages []string) []domain.RawDocument {
	filename := path.Base(file.URI)
	collected := n.now().UTC()

	docs := make([]domain.RawDocument, 0, len(pages))
	for i, text := range pages {
		text = strings.TrimSpace(text)
		if len([]rune(text)) < MinPageLength {
			logger.Debug("Skipping page %d of %s: %d characters", i+1, filename, len([]rune(text)))
			continue
		}
		docs = append(docs, domain.RawDocument{
			Source:      fmt.Sprintf("%s#page=%d", file.URI, i+1),
			Type:        domain.DocumentTypePDF,
			Content:     text,
			Filename:    filename,
			CollectedAt: collected,
			Metadata: map[string]any{
				"filename":    filename,
				"page_number": i + 1,
				"total_pages": len(pages),
			},
		})
	}
	logger.Info("Processed %d of %d pages from %s", len(docs), len(pages), filename)
	return docs
}

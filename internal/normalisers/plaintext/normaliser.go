package plaintext

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text exam papers.
type Normaliser struct {
	now func() time.Time
}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{now: time.Now}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// Normalise returns the file as a single text document. Line endings are
// unified to "\n" so line-anchored question markers still match.
func (n *Normaliser) Normalise(_ context.Context, file driven.SourceFile) ([]domain.RawDocument, error) {
	content := strings.ReplaceAll(string(file.Content), "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, file.URI)
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
		},
	}}, nil
}

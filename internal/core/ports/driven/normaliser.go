package driven

import (
	"context"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// SourceFile is an input file (or fetched page) before normalisation.
type SourceFile struct {
	// URI is the file path or URL.
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Normaliser converts a source file into raw documents ready for ingestion.
// A PDF yields one document per page; other formats yield one document.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Normalise extracts text documents from the file.
	Normalise(ctx context.Context, file SourceFile) ([]domain.RawDocument, error)
}

package driven

import (
	"context"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a source file
// by MIME type.
type NormaliserRegistry interface {
	// Normalise converts the file using the normaliser registered for its MIME type.
	// Returns domain.ErrUnsupportedType if none is registered.
	Normalise(ctx context.Context, file SourceFile) ([]domain.RawDocument, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}

package driven

import (
	"context"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// DocumentArchive writes raw documents out of the store, grouped by year.
type DocumentArchive interface {
	// Write stores one document under its year bucket and returns the path written.
	Write(ctx context.Context, doc domain.RawDocument) (string, error)
}

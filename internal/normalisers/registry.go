package normalisers

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/normalisers/html"
	"github.com/UceeCode/waec-ai/internal/normalisers/markdown"
	"github.com/UceeCode/waec-ai/internal/normalisers/pdf"
	"github.com/UceeCode/waec-ai/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps MIME types to normalisers. Later registrations replace
// earlier ones for the same type.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string]driven.Normaliser)}
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(pdf.New())
	return r
}

// Register adds a normaliser for each MIME type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mt := range n.SupportedMIMETypes() {
		r.byMIME[mt] = n
	}
}

// Normalise converts the file with the normaliser registered for its MIME
// type. An empty MIME type is detected from the URI and content.
func (r *Registry) Normalise(ctx context.Context, file driven.SourceFile) ([]domain.RawDocument, error) {
	if file.MIMEType == "" {
		file.MIMEType = DetectMIMEType(file.URI, file.Content)
	}
	mt := baseMIMEType(file.MIMEType)

	r.mu.RLock()
	n, ok := r.byMIME[mt]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no normaliser for %s (%s)", domain.ErrUnsupportedType, file.URI, mt)
	}
	file.MIMEType = mt
	return n.Normalise(ctx, file)
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	slices.Sort(types)
	return types
}

// extensionTypes covers extensions whose system MIME mapping is missing or
// unreliable across platforms.
var extensionTypes = map[string]string{
	".pdf":      "application/pdf",
	".html":     "text/html",
	".htm":      "text/html",
	".xhtml":    "application/xhtml+xml",
	".txt":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
}

// DetectMIMEType guesses a file's MIME type from its extension, falling
// back to content sniffing. Parameters such as charset are dropped.
func DetectMIMEType(uri string, content []byte) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(uri, "?", 2)[0]))
	if mt, ok := extensionTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return baseMIMEType(mt)
	}
	return baseMIMEType(http.DetectContentType(content))
}

// IsSupportedFile reports whether the registry can handle a path by its extension.
func (r *Registry) IsSupportedFile(uri string) bool {
	ext := strings.ToLower(path.Ext(uri))
	mt, ok := extensionTypes[ext]
	if !ok {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok = r.byMIME[mt]
	return ok
}

func baseMIMEType(mt string) string {
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

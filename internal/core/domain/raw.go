package domain

import (
	"crypto/md5" //nolint:gosec // fingerprint, not a security boundary
	"encoding/hex"
	"strings"
	"time"
)

// DocumentType identifies where a raw document came from.
type DocumentType string

// Known document types.
const (
	// DocumentTypeWeb is a scraped web page.
	DocumentTypeWeb DocumentType = "web"

	// DocumentTypePDF is a single page of a PDF paper.
	DocumentTypePDF DocumentType = "pdf"

	// DocumentTypeText is a plain text file.
	DocumentTypeText DocumentType = "text"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeWeb, DocumentTypePDF, DocumentTypeText:
		return true
	default:
		return false
	}
}

// RawDocument is an exam-archive document as handed to ingestion.
// Source is its unique key: re-ingesting the same source updates the
// record in place.
type RawDocument struct {
	// Source is the unique identifier (URL, or "file.pdf#page=N").
	Source string

	// Type is the origin of the document.
	Type DocumentType

	// Content is the extracted plain text.
	Content string

	// ContentHash is the MD5 fingerprint of the normalised content.
	ContentHash string

	// Filename is the original file or URL path, used for subject and year hints.
	Filename string

	// Year is the exam year, if one could be inferred.
	Year *int

	// CollectedAt is when the document was fetched.
	CollectedAt time.Time

	// Metadata carries loader-specific key-value pairs (page number, domain, ...).
	Metadata map[string]any
}

// UpsertStatus reports what an upsert did to the stored record.
type UpsertStatus string

// Upsert outcomes.
const (
	UpsertInserted  UpsertStatus = "inserted"
	UpsertUpdated   UpsertStatus = "updated"
	UpsertUnchanged UpsertStatus = "unchanged"
)

// NormaliseContent collapses every whitespace run to a single space and trims
// the result. It is the canonical form fingerprinted by ContentHash.
func NormaliseContent(content string) string {
	return strings.Join(strings.Fields(content), " ")
}

// ContentHash returns the hex MD5 fingerprint of the normalised content.
func ContentHash(content string) string {
	sum := md5.Sum([]byte(NormaliseContent(content))) //nolint:gosec // fingerprint only
	return hex.EncodeToString(sum[:])
}

// Package jsondir exports raw documents as JSON files grouped by exam year:
//
//	<root>/<year|unknown_year>/<content_hash>.json
//
// Each file is written to a temp file in the same directory and renamed into
// place, so a reader never sees a partial document.
package jsondir

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

// Ensure Archive implements the interface.
var _ driven.DocumentArchive = (*Archive)(nil)

// UnknownYearDir holds documents with no inferred year.
const UnknownYearDir = "unknown_year"

// Archive writes documents under a root directory.
type Archive struct {
	root string
}

// New creates the root directory if needed.
func New(root string) (*Archive, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: export directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &Archive{root: root}, nil
}

// Root returns the export directory.
func (a *Archive) Root() string {
	return a.root
}

// record is the on-disk form of a raw document.
type record struct {
	Source      string         `json:"source"`
	Type        string         `json:"type"`
	Filename    string         `json:"filename,omitempty"`
	Year        *int           `json:"year"`
	ContentHash string         `json:"content_hash"`
	CollectedAt time.Time      `json:"collected_at"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Content     string         `json:"content"`
}

// Write stores doc under its year directory and returns the file path.
// Documents with identical content share a file name, so a re-export
// overwrites rather than duplicates.
func (a *Archive) Write(ctx context.Context, doc domain.RawDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	hash := doc.ContentHash
	if hash == "" {
		hash = domain.ContentHash(doc.Content)
	}

	dir := filepath.Join(a.root, yearDir(doc.Year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create year directory: %w", err)
	}

	data, err := json.MarshalIndent(record{
		Source:      doc.Source,
		Type:        string(doc.Type),
		Filename:    doc.Filename,
		Year:        doc.Year,
		ContentHash: hash,
		CollectedAt: doc.CollectedAt,
		Metadata:    doc.Metadata,
		Content:     doc.Content,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", doc.Source, err)
	}

	path := filepath.Join(dir, hash+".json")
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("write %s: %w", doc.Source, err)
	}
	return path, nil
}

func yearDir(year *int) string {
	if year == nil {
		return UnknownYearDir
	}
	return strconv.Itoa(*year)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

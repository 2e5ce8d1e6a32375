// Package watch ingests exam papers from a directory tree: every supported
// file once on Scan, then each file again whenever it is created or rewritten
// while Run is active.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
	"github.com/UceeCode/waec-ai/internal/logger"
	"github.com/UceeCode/waec-ai/internal/normalisers"
)

// DefaultSettleDelay is how long a file must stay quiet after its last
// event before it is ingested.
const DefaultSettleDelay = 500 * time.Millisecond

// Normalisers is a registry that can also tell, by path alone, whether a
// file is worth reading. *normalisers.Registry satisfies it.
type Normalisers interface {
	driven.NormaliserRegistry
	IsSupportedFile(uri string) bool
}

// Report is the outcome of ingesting one file.
type Report struct {
	Path    string
	Results []domain.IngestResult
	Err     error
}

// Questions returns how many questions were stored across every document
// the file produced.
func (r Report) Questions() int {
	n := 0
	for _, res := range r.Results {
		n += res.Stored
	}
	return n
}

// Watcher feeds files under a root directory into the ingestion service.
type Watcher struct {
	root        string
	normalisers Normalisers
	ingestion   driving.IngestionService
	settle      time.Duration
	report      func(Report)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithReporter receives a Report for every file Run ingests. The default
// logs each report.
func WithReporter(fn func(Report)) Option {
	return func(w *Watcher) {
		w.report = fn
	}
}

// New creates a watcher over root.
func New(root string, norm Normalisers, ingestion driving.IngestionService, opts ...Option) *Watcher {
	w := &Watcher{
		root:        filepath.Clean(root),
		normalisers: norm,
		ingestion:   ingestion,
		settle:      DefaultSettleDelay,
		report:      logReport,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Scan ingests every supported, non-hidden file under the root in lexical
// order. Per-file failures are carried in the reports; the error is only
// set when the tree cannot be walked.
func (w *Watcher) Scan(ctx context.Context) ([]Report, error) {
	paths, err := w.supportedFiles(w.root)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		reports = append(reports, w.IngestFile(ctx, path))
	}
	return reports, nil
}

// IngestFile normalises one file and ingests the documents it yields.
func (w *Watcher) IngestFile(ctx context.Context, path string) Report {
	report := Report{Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		report.Err = fmt.Errorf("read %s: %w", path, err)
		return report
	}

	docs, err := w.normalisers.Normalise(ctx, driven.SourceFile{
		URI:      path,
		MIMEType: normalisers.DetectMIMEType(path, content),
		Content:  content,
	})
	if err != nil {
		report.Err = err
		return report
	}

	report.Results, report.Err = w.ingestion.IngestAll(ctx, docs)
	return report
}

// Run watches the tree until ctx is cancelled. Directories created while
// running are watched too, and files already inside them are queued.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	logger.Info("Watching %s for new papers", w.root)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			switch w.classify(event) {
			case changeFile:
				pending[event.Name] = time.Now()
			case changeDir:
				if err := w.addTree(fw, event.Name); err != nil {
					logger.Warn("watch %s: %v", event.Name, err)
					continue
				}
				files, err := w.supportedFiles(event.Name)
				if err != nil {
					logger.Warn("scan %s: %v", event.Name, err)
				}
				for _, f := range files {
					pending[f] = time.Now()
				}
			case changeNone:
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-ticker.C:
			for path, seen := range pending {
				if time.Since(seen) < w.settle {
					continue
				}
				delete(pending, path)
				w.report(w.IngestFile(ctx, path))
			}
		}
	}
}

type change int

const (
	changeNone change = iota
	changeFile
	changeDir
)

// classify decides what a filesystem event means for ingestion. Removals
// are ignored: stored records are never deleted.
func (w *Watcher) classify(event fsnotify.Event) change {
	if w.hidden(event.Name) {
		return changeNone
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			logger.Debug("%s removed; stored records kept", event.Name)
		}
		return changeNone
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return changeNone
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			return changeDir
		}
		return changeNone
	}
	if !w.normalisers.IsSupportedFile(event.Name) {
		return changeNone
	}
	return changeFile
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.hidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) supportedFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != w.root && w.hidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && w.normalisers.IsSupportedFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return paths, nil
}

func (w *Watcher) tick() time.Duration {
	if t := w.settle / 2; t > 10*time.Millisecond {
		return t
	}
	return 10 * time.Millisecond
}

// hidden checks the path relative to the root so a root that itself lives
// under a dot directory still works.
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// isHidden reports whether any path element starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func logReport(r Report) {
	if r.Err != nil {
		logger.Warn("ingest %s: %v", r.Path, r.Err)
		return
	}
	logger.Info("Ingested %s: %d question(s) from %d document(s)", r.Path, r.Questions(), len(r.Results))
}

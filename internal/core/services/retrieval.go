package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
	"github.com/UceeCode/waec-ai/internal/logger"
)

// Ensure RetrievalContext implements the interfaces.
var (
	_ driving.RetrievalService = (*RetrievalContext)(nil)
	_ driving.IndexService     = (*RetrievalContext)(nil)
)

// Defaults for index rebuilds.
const (
	DefaultEmbedBatchSize = 32
	DefaultEmbedWorkers   = 4
)

// inMemoryGeneration labels generations that were never persisted.
const inMemoryGeneration = "in-memory"

// indexSnapshot is an immutable pairing of a global index with its id map.
// ids[i] is the question stored at index position i.
type indexSnapshot struct {
	index  driven.VectorIndex
	ids    []string
	status domain.IndexStatus
}

// RetrievalContext owns the global question index and answers retrieval
// requests. It combines exact metadata filtering from the DocumentStore with
// nearest-neighbour ranking over embeddings.
//
// The loaded index and id map are swapped together under a lock, so a query
// never sees one without the other. Rebuilds are serialised; a rebuild that
// fails leaves the previous snapshot in place.
type RetrievalContext struct {
	store     driven.DocumentStore
	embedder  driven.EmbeddingService
	factory   driven.VectorIndexFactory
	artifacts driven.IndexArtifactStore

	batchSize int
	workers   int
	defaultK  int

	mu   sync.RWMutex
	snap *indexSnapshot

	rebuildMu sync.Mutex
}

// RetrievalOption configures a RetrievalContext.
type RetrievalOption func(*RetrievalContext)

// WithArtifactStore persists index generations. Without one, indexes live
// only in memory and every Open rebuilds.
func WithArtifactStore(store driven.IndexArtifactStore) RetrievalOption {
	return func(r *RetrievalContext) {
		r.artifacts = store
	}
}

// WithEmbedBatchSize sets how many texts are sent per EmbedBatch call during
// a rebuild.
func WithEmbedBatchSize(n int) RetrievalOption {
	return func(r *RetrievalContext) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithEmbedWorkers sets how many embedding batches run concurrently during
// a rebuild.
func WithEmbedWorkers(n int) RetrievalOption {
	return func(r *RetrievalContext) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithDefaultK sets the result count used when a request does not give one.
func WithDefaultK(k int) RetrievalOption {
	return func(r *RetrievalContext) {
		if k > 0 {
			r.defaultK = k
		}
	}
}

// NewRetrievalContext creates a retrieval context. The embedder may be nil,
// in which case only metadata-only retrieval is available.
func NewRetrievalContext(
	store driven.DocumentStore,
	embedder driven.EmbeddingService,
	factory driven.VectorIndexFactory,
	opts ...RetrievalOption,
) *RetrievalContext {
	r := &RetrievalContext{
		store:     store,
		embedder:  embedder,
		factory:   factory,
		batchSize: DefaultEmbedBatchSize,
		workers:   DefaultEmbedWorkers,
		defaultK:  domain.DefaultRetrievalK,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open loads the persisted index generation, rebuilding when there is none
// or when it is unreadable, inconsistent or built with a different model.
// A failed rebuild is returned, but the context stays usable: queries
// against the global index then return no results.
func (r *RetrievalContext) Open(ctx context.Context) error {
	logger.Section("Index Load")

	snap, reason := r.load(ctx)
	if snap != nil {
		r.publish(snap)
		logger.Info("Loaded index generation %s (%d entries)", snap.status.Generation, snap.status.Entries)
		return nil
	}

	logger.Info("Rebuilding index: %s", reason)
	if _, err := r.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	return nil
}

// load returns the persisted snapshot, or nil and the reason it is unusable.
func (r *RetrievalContext) load(ctx context.Context) (*indexSnapshot, string) {
	if r.artifacts == nil {
		return nil, "no artifact store"
	}

	a, err := r.artifacts.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "no index generation published"
	}
	if err != nil {
		logger.Warn("Loading index artefacts: %v", err)
		return nil, "artefacts unreadable"
	}

	index := r.factory.NewIndex(a.Dimensions)
	if err := index.UnmarshalBinary(a.Index); err != nil {
		logger.Warn("Decoding index generation %s: %v", a.Generation, err)
		return nil, "index undecodable"
	}
	if index.Len() != len(a.IDMap) {
		logger.Warn("Index generation %s has %d vectors but %d ids", a.Generation, index.Len(), len(a.IDMap))
		return nil, "index and id map disagree"
	}
	if r.embedder != nil {
		if a.Model != r.embedder.ModelName() {
			return nil, fmt.Sprintf("embedding model changed from %q to %q", a.Model, r.embedder.ModelName())
		}
		if index.Dimensions() != r.embedder.Dimensions() {
			return nil, fmt.Sprintf("embedding dimensions changed from %d to %d", index.Dimensions(), r.embedder.Dimensions())
		}
	}

	return &indexSnapshot{
		index: index,
		ids:   a.IDMap,
		status: domain.IndexStatus{
			Loaded:     true,
			Generation: a.Generation,
			Entries:    index.Len(),
			Dimensions: index.Dimensions(),
			Model:      a.Model,
			BuiltAt:    a.CreatedAt,
		},
	}, ""
}

// Rebuild re-embeds every stored question into a fresh index and publishes
// it. Only one rebuild runs at a time; a concurrent call returns
// domain.ErrRebuildInProgress. Nothing is published when any step fails.
func (r *RetrievalContext) Rebuild(ctx context.Context) (domain.IndexStatus, error) {
	if !r.rebuildMu.TryLock() {
		return domain.IndexStatus{}, domain.ErrRebuildInProgress
	}
	defer r.rebuildMu.Unlock()

	if r.embedder == nil {
		return domain.IndexStatus{}, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Index Rebuild")
	defer logger.Elapsed("index rebuild", time.Now())

	questions, err := r.store.FindQuestions(ctx, domain.QuestionFilter{})
	if err != nil {
		return domain.IndexStatus{}, fmt.Errorf("list questions: %w", err)
	}
	logger.Info("Embedding %d questions", len(questions))

	texts := make([]string, len(questions))
	ids := make([]string, len(questions))
	for i, q := range questions {
		texts[i] = q.EmbeddingText()
		ids[i] = q.ID
	}

	vectors, err := r.embedAll(ctx, texts)
	if err != nil {
		return domain.IndexStatus{}, err
	}

	dims := r.embedder.Dimensions()
	index := r.factory.NewIndex(dims)
	if err := index.Add(vectors); err != nil {
		return domain.IndexStatus{}, fmt.Errorf("build index (check embedding.dimensions): %w", err)
	}

	status := domain.IndexStatus{
		Loaded:     true,
		Generation: inMemoryGeneration,
		Entries:    index.Len(),
		Dimensions: dims,
		Model:      r.embedder.ModelName(),
		BuiltAt:    time.Now().UTC(),
	}

	if r.artifacts != nil {
		data, err := index.MarshalBinary()
		if err != nil {
			return domain.IndexStatus{}, fmt.Errorf("encode index: %w", err)
		}
		generation, err := r.artifacts.Save(ctx, driven.IndexArtifacts{
			Index:      data,
			IDMap:      ids,
			Model:      status.Model,
			Dimensions: dims,
			CreatedAt:  status.BuiltAt,
		})
		if err != nil {
			return domain.IndexStatus{}, fmt.Errorf("save index: %w", err)
		}
		status.Generation = generation
	}

	r.publish(&indexSnapshot{index: index, ids: ids, status: status})
	logger.Info("Published index generation %s (%d entries, %d dims)", status.Generation, status.Entries, dims)

	cache := make(map[string][]float32, len(ids))
	for i, id := range ids {
		cache[id] = vectors[i]
	}
	if err := r.store.SaveEmbeddings(ctx, cache); err != nil {
		logger.Warn("Caching embeddings: %v", err)
	}

	return status, nil
}

// embedAll embeds texts in batches with bounded concurrency. Output order
// matches input order.
func (r *RetrievalContext) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for start := 0; start < len(texts); start += r.batchSize {
		end := min(start+r.batchSize, len(texts))
		g.Go(func() error {
			batch, err := r.embedder.EmbedBatch(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed questions %d-%d: %w", start, end-1, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embed questions %d-%d: got %d vectors", start, end-1, len(batch))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (r *RetrievalContext) publish(snap *indexSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap
}

func (r *RetrievalContext) snapshot() *indexSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// IndexStatus describes the loaded generation.
func (r *RetrievalContext) IndexStatus() domain.IndexStatus {
	if snap := r.snapshot(); snap != nil {
		return snap.status
	}
	return domain.IndexStatus{}
}

// Retrieve returns up to K questions for the request.
//
// With no query, questions matching the filter come back in store order.
// With a query and a filter, the matching subset is ranked exactly by
// distance to the query. With a query alone, the global index is searched.
func (r *RetrievalContext) Retrieve(ctx context.Context, req domain.RetrieveRequest) ([]domain.RetrievalResult, error) {
	k := req.K
	if k <= 0 {
		k = r.defaultK
	}
	query := strings.TrimSpace(req.Query)
	filter := req.Filter.Normalised()

	logger.Debug("Retrieve: query=%q k=%d filter_empty=%t", query, k, filter.IsEmpty())

	switch {
	case query == "" && filter.IsEmpty():
		return []domain.RetrievalResult{}, nil
	case query == "":
		return r.retrieveByMetadata(ctx, filter, k)
	case !filter.IsEmpty():
		return r.retrieveFiltered(ctx, query, filter, k)
	default:
		return r.retrieveGlobal(ctx, query, k)
	}
}

func (r *RetrievalContext) retrieveByMetadata(ctx context.Context, filter domain.QuestionFilter, k int) ([]domain.RetrievalResult, error) {
	questions, err := r.store.FindQuestions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	if len(questions) > k {
		questions = questions[:k]
	}

	results := make([]domain.RetrievalResult, len(questions))
	for i, q := range questions {
		results[i] = domain.RetrievalResult{Question: q}
	}
	return results, nil
}

// retrieveFiltered ranks the filtered subset in a transient index. Cached
// embeddings are reused when their size matches the embedder.
func (r *RetrievalContext) retrieveFiltered(ctx context.Context, query string, filter domain.QuestionFilter, k int) ([]domain.RetrievalResult, error) {
	questions, err := r.store.FindQuestions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	if len(questions) == 0 {
		return []domain.RetrievalResult{}, nil
	}
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	dims := r.embedder.Dimensions()
	vectors := make([][]float32, len(questions))
	var missing []int
	for i, q := range questions {
		if len(q.Embedding) == dims {
			vectors[i] = q.Embedding
		} else {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		logger.Debug("Embedding %d uncached questions", len(missing))
		texts := make([]string, len(missing))
		for j, i := range missing {
			texts[j] = questions[i].EmbeddingText()
		}
		embedded, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed questions: %w", err)
		}
		if len(embedded) != len(missing) {
			return nil, fmt.Errorf("embed questions: got %d vectors for %d texts", len(embedded), len(missing))
		}
		for j, i := range missing {
			vectors[i] = embedded[j]
		}
	}

	qvec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	subset := r.factory.NewIndex(dims)
	if err := subset.Add(vectors); err != nil {
		return nil, fmt.Errorf("build subset index: %w", err)
	}
	hits, err := subset.Search(qvec, min(k, len(questions)))
	if err != nil {
		return nil, fmt.Errorf("search subset: %w", err)
	}

	results := make([]domain.RetrievalResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.RetrievalResult{
			Question: questions[hit.Position],
			Distance: hit.Distance,
			Ranked:   true,
		}
	}
	return results, nil
}

// retrieveGlobal searches the loaded index. Ids the store no longer holds
// are dropped.
func (r *RetrievalContext) retrieveGlobal(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	snap := r.snapshot()
	if snap == nil || snap.index.Len() == 0 {
		logger.Debug("No index loaded, returning no results")
		return []domain.RetrievalResult{}, nil
	}
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	qvec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := snap.index.Search(qvec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	ids := make([]string, 0, len(hits))
	distances := make(map[string]float32, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(snap.ids) {
			continue
		}
		id := snap.ids[hit.Position]
		ids = append(ids, id)
		distances[id] = hit.Distance
	}

	questions, err := r.store.GetQuestions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	if len(questions) < len(ids) {
		logger.Debug("%d indexed questions missing from store", len(ids)-len(questions))
	}

	results := make([]domain.RetrievalResult, len(questions))
	for i, q := range questions {
		results[i] = domain.RetrievalResult{
			Question: q,
			Distance: distances[q.ID],
			Ranked:   true,
		}
	}
	return results, nil
}

package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UceeCode/waec-ai/internal/adapters/driven/vectorindex/flat"
	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

// seedStore stores questions in order and returns them.
func seedStore(t *testing.T, store driven.DocumentStore, qs ...domain.Question) []domain.Question {
	t.Helper()
	for _, q := range qs {
		require.NoError(t, store.UpsertQuestion(context.Background(), q))
	}
	return qs
}

func newTestRetrieval(store driven.DocumentStore, embedder driven.EmbeddingService, opts ...RetrievalOption) *RetrievalContext {
	return NewRetrievalContext(store, embedder, flat.Factory{}, opts...)
}

func stems(results []domain.RetrievalResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Question.Stem
	}
	return out
}

func TestRetrieve_NoQueryNoFilterReturnsEmpty(t *testing.T) {
	store := newFailingStore()
	seedStore(t, store, question("p.pdf", 1, "alpha question stem", "physics", 2015))
	embedder := newMockEmbedder(2)
	r := newTestRetrieval(store, embedder)

	results, err := r.Retrieve(context.Background(), domain.RetrieveRequest{Query: "   "})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, embedder.calls())
}

func TestRetrieve_MetadataOnly(t *testing.T) {
	store := newFailingStore()
	seedStore(t, store,
		question("p.pdf", 1, "physics one stem", "physics", 2015),
		question("c.pdf", 1, "chemistry one stem", "chemistry", 2015),
		question("p.pdf", 2, "physics two stem", "physics", 2015),
		question("p.pdf", 3, "physics three stem", "physics", 2016),
		question("p.pdf", 4, "physics four stem", "physics", 2015),
	)
	embedder := newMockEmbedder(2)
	r := newTestRetrieval(store, embedder)

	tests := []struct {
		name   string
		req    domain.RetrieveRequest
		expect []string
	}{
		{
			name:   "subject and year in store order",
			req:    domain.RetrieveRequest{Filter: domain.QuestionFilter{Subject: ptr("Physics"), Year: ptr(2015)}},
			expect: []string{"physics one stem", "physics two stem", "physics four stem"},
		},
		{
			name:   "truncated to k",
			req:    domain.RetrieveRequest{K: 2, Filter: domain.QuestionFilter{Subject: ptr("physics")}},
			expect: []string{"physics one stem", "physics two stem"},
		},
		{
			name:   "year only",
			req:    domain.RetrieveRequest{Filter: domain.QuestionFilter{Year: ptr(2016)}},
			expect: []string{"physics three stem"},
		},
		{
			name:   "no match",
			req:    domain.RetrieveRequest{Filter: domain.QuestionFilter{Subject: ptr("biology")}},
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := r.Retrieve(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, stems(results))
			for _, res := range results {
				assert.False(t, res.Ranked)
				assert.Zero(t, res.Distance)
			}
		})
	}
	assert.Equal(t, 0, embedder.calls())
}

func TestRetrieve_FilteredReturnsAllMatchesWhenFewerThanK(t *testing.T) {
	store := newFailingStore()
	seedStore(t, store,
		question("p.pdf", 1, "alpha physics stem", "physics", 2015),
		question("p.pdf", 2, "gamma physics stem", "physics", 2015),
		question("p.pdf", 3, "beta physics stem", "physics", 2015),
		question("c.pdf", 1, "beta chemistry stem", "chemistry", 2015),
		question("p.pdf", 4, "delta physics stem", "physics", 2016),
	)
	embedder := newMockEmbedder(2)
	embedder.vectors["alpha"] = []float32{0, 0}
	embedder.vectors["beta"] = []float32{1, 0}
	embedder.vectors["gamma"] = []float32{5, 0}
	embedder.vectors["delta"] = []float32{1, 0}
	r := newTestRetrieval(store, embedder)

	results, err := r.Retrieve(context.Background(), domain.RetrieveRequest{
		Query:  "beta",
		K:      5,
		Filter: domain.QuestionFilter{Subject: ptr("physics"), Year: ptr(2015)},
	})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"beta physics stem", "alpha physics stem", "gamma physics stem"}, stems(results))
	for i, res := range results {
		assert.True(t, res.Ranked)
		assert.Equal(t, "physics", res.Question.Subject)
		if i > 0 {
			assert.LessOrEqual(t, results[i-1].Distance, res.Distance)
		}
	}
	assert.Equal(t, 1, int(embedder.batchCalls.Load()))
	assert.Equal(t, 3, int(embedder.batchTexts.Load()))
}

func TestRetrieve_FilteredEmptySubsetSkipsEmbedding(t *testing.T) {
	store := newFailingStore()
	seedStore(t, store, question("p.pdf", 1, "alpha physics stem", "physics", 2015))
	embedder := newMockEmbedder(2)
	r := newTestRetrieval(store, embedder)

	results, err := r.Retrieve(context.Background(), domain.RetrieveRequest{
		Query:  "anything",
		Filter: domain.QuestionFilter{Subject: ptr("biology")},
	})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, embedder.calls())
}

func TestRetrieve_FilteredUsesCachedEmbeddings(t *testing.T) {
	store := newFailingStore()
	qs := seedStore(t, store,
		question("p.pdf", 1, "alpha physics stem", "physics", 2015),
		question("p.pdf", 2, "beta physics stem", "physics", 2015),
	)
	require.NoError(t, store.SaveEmbeddings(context.Background(), map[string][]float32{
		qs[0].ID: {0, 0},
		qs[1].ID: {9, 9},
	}))
	embedder := newMockEmbedder(2)
	embedder.vectors["query"] = []float32{8, 8}
	r := newTestRetrieval(store, embedder)

	results, err := r.Retrieve(context.Background(), domain.RetrieveRequest{
		Query:  "query",
		Filter: domain.QuestionFilter{Subject: ptr("physics")},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"beta physics stem", "alpha physics stem"}, stems(results))
	assert.Equal(t, 0, int(embedder.batchCalls.Load()))
	assert.Equal(t, 1, int(embedder.embedCalls.Load()))
}

func TestRetrieve_FilteredWithoutEmbedder(t *testing.T) {
	store := newFailingStore()
	seedStore(t, store, question("p.pdf", 1, "alpha physics stem", "physics", 2015))
	r := newTestRetrieval(store, nil)

	_, err := r.Retrieve(context.Background(), domain.RetrieveRequest{
		Query:  "alpha",
		Filter: domain.QuestionFilter{Subject: ptr("physics")},
	})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetrieve_GlobalAfterRebuild(t *testing.T) {
	store := newFailingStore()
	seedStore(t, store,
		question("p.pdf", 1, "alpha physics stem", "physics", 2015),
		question("c.pdf", 1, "beta chemistry stem", "chemistry", 2014),
		question("b.pdf", 1, "gamma biology stem", "biology", 0),
	)
	embedder := newMockEmbedder(2)
	embedder.vectors["alpha"] = []float32{0, 0}
	embedder.vectors["beta"] = []float32{2, 0}
	embedder.vectors["gamma"] = []float32{10, 0}
	embedder.vectors["lookup"] = []float32{3, 0}
	r := newTestRetrieval(store, embedder, WithArtifactStore(&mockArtifactStore{}))

	_, err := r.Rebuild(context.Background())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), domain.RetrieveRequest{Query: "lookup", K: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"beta chemistry stem", "alpha physics stem"}, stems(results))
	assert.True(t, results[0].Ranked)
	assert.Less(t, results[0].Distance, results[1].Distance)
}

func TestRetrieve_GlobalDefaultK(t *testing.T) {
	store := newFailingStore()
	for i := 1; i <= 8; i++ {
		seedStore(t, store, question("p.pdf", i, fmt.Sprintf("stem number %d here", i), "physics", 2015))
	}
	embedder := newMockEmbedder(2)
	r := newTestRetrieval(store, embedder)
	_, err := r.Rebuild(context.Background())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), domain.RetrieveRequest{Query: "anything"})

	require.NoError(t, err)
	assert.Len(t, results, domain.DefaultRetrievalK)
}

func TestRetrieve_GlobalSkipsIdsMissingFromStore(t *testing.T) {
	store := newFailingStore()
	qs := seedStore(t, store,
		question("p.pdf", 1, "alpha physics stem", "physics", 2015),
		question("p.pdf", 2, "beta physics stem", "physics", 2015),
	)

	index := flat.New(2)
	require.NoError(t, index.Add([][]float32{{0, 0}, {1, 0}, {2, 0}}))
	data, err := index.MarshalBinary()
	require.NoError(t, err)

	embedder := newMockEmbedder(2)
	embedder.vectors["lookup"] = []float32{0, 0}
	artifacts := &mockArtifactStore{current: &driven.IndexArtifacts{
		Generation: "existing",
		Index:      data,
		IDMap:      []string{qs[0].ID, "deleted-question", qs[1].ID},
		Model:      embedder.ModelName(),
		Dimensions: 2,
	}}
	r := newTestRetrieval(store, embedder, WithArtifactStore(artifacts))
	require.NoError(t, r.Open(context.Background()))

	results, err := r.Retrieve(context.Background(), domain.RetrieveRequest{Query: "lookup", K: 3})

	require.NoError(t, err)
	assert.Equal(t, []string{"alpha physics stem", "beta physics stem"}, stems(results))
	assert.Equal(t, "existing", r.IndexStatus().Generation)
	assert.Equal(t, 0, artifacts.saves)
}

func TestRetrieve_GlobalWithoutIndexReturnsEmpty(t *testing.T) {
	store := newFailingStore()
	seedStore(t, store, question("p.pdf", 1, "alpha physics stem", "physics", 2015))
	embedder := newMockEmbedder(2)
	r := newTestRetrieval(store, embedder)

	results, err := r.Retrieve(context.Background(), domain.RetrieveRequest{Query: "alpha"})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, embedder.calls())
	assert.False(t, r.IndexStatus().Loaded)
}

func TestRetrieve_GlobalOnEmptyIndexReturnsEmpty(t *testing.T) {
	embedder := newMockEmbedder(2)
	r := newTestRetrieval(newFailingStore(), embedder)

	require.NoError(t, r.Open(context.Background()))
	results, err := r.Retrieve(context.Background(), domain.RetrieveRequest{Query: "alpha"})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.True(t, r.IndexStatus().Loaded)
	assert.Equal(t, 0, r.IndexStatus().Entries)
	assert.Equal(t, 0, int(embedder.embedCalls.Load()))
}

func TestRebuild_IndexMatchesIdMapInOrder(t *testing.T) {
	store := newFailingStore()
	embedder := newMockEmbedder(2)
	var qs []domain.Question
	for i := range 23 {
		stem := fmt.Sprintf("question <%02d> stem text", i)
		qs = append(qs, question("p.pdf", i+1, stem, "physics", 2015))
		embedder.vectors[fmt.Sprintf("<%02d>", i)] = []float32{float32(i), float32(i * i)}
	}
	seedStore(t, store, qs...)
	artifacts := &mockArtifactStore{}
	r := newTestRetrieval(store, embedder,
		WithArtifactStore(artifacts), WithEmbedBatchSize(3), WithEmbedWorkers(4))

	status, err := r.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 23, status.Entries)
	assert.Equal(t, 2, status.Dimensions)
	assert.Equal(t, "mock-embed", status.Model)
	assert.Equal(t, artifacts.current.Generation, status.Generation)
	assert.Equal(t, 8, int(embedder.batchCalls.Load()))

	saved := artifacts.current
	require.Len(t, saved.IDMap, 23)
	index := flat.New(saved.Dimensions)
	require.NoError(t, index.UnmarshalBinary(saved.Index))
	require.Equal(t, len(saved.IDMap), index.Len())

	for i, q := range qs {
		assert.Equal(t, q.ID, saved.IDMap[i])
		hits, err := index.Search(embedder.vectorFor(q.Stem), 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, i, hits[0].Position)
	}
}

func TestRebuild_CachesEmbeddings(t *testing.T) {
	store := newFailingStore()
	qs := seedStore(t, store, question("p.pdf", 1, "alpha physics stem", "physics", 2015))
	embedder := newMockEmbedder(2)
	embedder.vectors["alpha"] = []float32{3, 4}
	r := newTestRetrieval(store, embedder)

	_, err := r.Rebuild(context.Background())
	require.NoError(t, err)

	got, err := store.GetQuestions(context.Background(), []string{qs[0].ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []float32{3, 4}, got[0].Embedding)
}

func TestRebuild_EmbeddingCacheFailureIsNotFatal(t *testing.T) {
	store := newFailingStore()
	store.saveEmbErr = assertErr
	seedStore(t, store, question("p.pdf", 1, "alpha physics stem", "physics", 2015))
	r := newTestRetrieval(store, newMockEmbedder(2))

	status, err := r.Rebuild(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, status.Entries)
}

func TestRebuild_FailureKeepsPreviousGeneration(t *testing.T) {
	tests := []struct {
		name string
		fail func(*failingStore, *mockEmbedder, *mockArtifactStore)
	}{
		{
			name: "embedding fails",
			fail: func(_ *failingStore, e *mockEmbedder, _ *mockArtifactStore) { e.batchErr = assertErr },
		},
		{
			name: "save fails",
			fail: func(_ *failingStore, _ *mockEmbedder, a *mockArtifactStore) { a.saveErr = assertErr },
		},
		{
			name: "store fails",
			fail: func(s *failingStore, _ *mockEmbedder, _ *mockArtifactStore) { s.findErr = assertErr },
		},
		{
			name: "wrong vector size",
			fail: func(_ *failingStore, e *mockEmbedder, _ *mockArtifactStore) {
				e.vectors["alpha"] = []float32{1, 2, 3}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFailingStore()
			seedStore(t, store, question("p.pdf", 1, "alpha physics stem", "physics", 2015))
			embedder := newMockEmbedder(2)
			artifacts := &mockArtifactStore{}
			r := newTestRetrieval(store, embedder, WithArtifactStore(artifacts))

			first, err := r.Rebuild(context.Background())
			require.NoError(t, err)

			seedStore(t, store, question("p.pdf", 2, "second physics stem", "physics", 2015))
			tt.fail(store, embedder, artifacts)

			_, err = r.Rebuild(context.Background())
			require.Error(t, err)

			assert.Equal(t, first, r.IndexStatus())
			assert.Equal(t, first.Generation, artifacts.current.Generation)
			assert.Len(t, artifacts.current.IDMap, 1)
		})
	}
}

func TestRebuild_RejectsConcurrentRebuild(t *testing.T) {
	r := newTestRetrieval(newFailingStore(), newMockEmbedder(2))

	r.rebuildMu.Lock()
	_, err := r.Rebuild(context.Background())
	r.rebuildMu.Unlock()

	assert.ErrorIs(t, err, domain.ErrRebuildInProgress)

	_, err = r.Rebuild(context.Background())
	assert.NoError(t, err)
}

func TestRebuild_WithoutEmbedder(t *testing.T) {
	r := newTestRetrieval(newFailingStore(), nil)

	_, err := r.Rebuild(context.Background())

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRebuild_WithoutArtifactStoreIsInMemory(t *testing.T) {
	store := newFailingStore()
	seedStore(t, store, question("p.pdf", 1, "alpha physics stem", "physics", 2015))
	r := newTestRetrieval(store, newMockEmbedder(2))

	status, err := r.Rebuild(context.Background())

	require.NoError(t, err)
	assert.Equal(t, inMemoryGeneration, status.Generation)
	assert.True(t, status.Loaded)
}

func TestOpen_LoadsValidGeneration(t *testing.T) {
	store := newFailingStore()
	seedStore(t, store, question("p.pdf", 1, "alpha physics stem", "physics", 2015))
	artifacts := &mockArtifactStore{}

	first := newTestRetrieval(store, newMockEmbedder(2), WithArtifactStore(artifacts))
	built, err := first.Rebuild(context.Background())
	require.NoError(t, err)

	embedder := newMockEmbedder(2)
	second := newTestRetrieval(store, embedder, WithArtifactStore(artifacts))
	require.NoError(t, second.Open(context.Background()))

	assert.Equal(t, 1, artifacts.saves)
	assert.Equal(t, built.Generation, second.IndexStatus().Generation)
	assert.Equal(t, 1, second.IndexStatus().Entries)
	assert.Equal(t, 0, embedder.calls())
}

func TestOpen_RebuildsWhenGenerationUnusable(t *testing.T) {
	validIndex := func(t *testing.T, n int) []byte {
		t.Helper()
		index := flat.New(2)
		vecs := make([][]float32, n)
		for i := range vecs {
			vecs[i] = []float32{float32(i), 0}
		}
		require.NoError(t, index.Add(vecs))
		data, err := index.MarshalBinary()
		require.NoError(t, err)
		return data
	}

	tests := []struct {
		name      string
		artifacts func(t *testing.T, id string) *mockArtifactStore
	}{
		{
			name: "nothing published",
			artifacts: func(_ *testing.T, _ string) *mockArtifactStore {
				return &mockArtifactStore{}
			},
		},
		{
			name: "corrupt artefacts",
			artifacts: func(_ *testing.T, _ string) *mockArtifactStore {
				return &mockArtifactStore{loadErr: fmt.Errorf("read index: %w", domain.ErrCorruptIndex)}
			},
		},
		{
			name: "undecodable index",
			artifacts: func(_ *testing.T, id string) *mockArtifactStore {
				return &mockArtifactStore{current: &driven.IndexArtifacts{
					Index: []byte("junk"), IDMap: []string{id}, Model: "mock-embed", Dimensions: 2,
				}}
			},
		},
		{
			name: "id map length differs",
			artifacts: func(t *testing.T, id string) *mockArtifactStore {
				return &mockArtifactStore{current: &driven.IndexArtifacts{
					Index: validIndex(t, 2), IDMap: []string{id}, Model: "mock-embed", Dimensions: 2,
				}}
			},
		},
		{
			name: "model changed",
			artifacts: func(t *testing.T, id string) *mockArtifactStore {
				return &mockArtifactStore{current: &driven.IndexArtifacts{
					Index: validIndex(t, 1), IDMap: []string{id}, Model: "other-model", Dimensions: 2,
				}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFailingStore()
			qs := seedStore(t, store, question("p.pdf", 1, "alpha physics stem", "physics", 2015))
			artifacts := tt.artifacts(t, qs[0].ID)
			r := newTestRetrieval(store, newMockEmbedder(2), WithArtifactStore(artifacts))

			require.NoError(t, r.Open(context.Background()))

			assert.Equal(t, 1, artifacts.saves)
			status := r.IndexStatus()
			assert.True(t, status.Loaded)
			assert.Equal(t, 1, status.Entries)
			assert.Equal(t, "mock-embed", status.Model)
		})
	}
}

func TestOpen_FailedRebuildLeavesContextUsable(t *testing.T) {
	store := newFailingStore()
	seedStore(t, store, question("p.pdf", 1, "alpha physics stem", "physics", 2015))
	embedder := newMockEmbedder(2)
	embedder.batchErr = assertErr
	r := newTestRetrieval(store, embedder, WithArtifactStore(&mockArtifactStore{}))

	err := r.Open(context.Background())
	require.ErrorIs(t, err, assertErr)

	results, err := r.Retrieve(context.Background(), domain.RetrieveRequest{Query: "alpha"})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = r.Retrieve(context.Background(), domain.RetrieveRequest{Filter: domain.QuestionFilter{Subject: ptr("physics")}})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

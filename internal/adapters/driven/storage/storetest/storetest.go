// Package storetest holds behaviour tests shared by every DocumentStore
// implementation.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

// Factory returns a fresh, empty store. The store is closed by the caller's
// cleanup.
type Factory func(t *testing.T) driven.DocumentStore

// Run exercises a DocumentStore implementation.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("UpsertRawDocument", func(t *testing.T) { testUpsertRawDocument(t, newStore(t)) })
	t.Run("GetRawDocumentNotFound", func(t *testing.T) { testGetRawDocumentNotFound(t, newStore(t)) })
	t.Run("ListRawDocumentsOrder", func(t *testing.T) { testListRawDocumentsOrder(t, newStore(t)) })
	t.Run("UpsertQuestionIdempotent", func(t *testing.T) { testUpsertQuestionIdempotent(t, newStore(t)) })
	t.Run("GetQuestionsRequestOrder", func(t *testing.T) { testGetQuestionsRequestOrder(t, newStore(t)) })
	t.Run("FindQuestions", func(t *testing.T) { testFindQuestions(t, newStore(t)) })
	t.Run("SaveEmbeddings", func(t *testing.T) { testSaveEmbeddings(t, newStore(t)) })
	t.Run("Stats", func(t *testing.T) { testStats(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) { testPing(t, newStore(t)) })
	t.Run("ConcurrentUpserts", func(t *testing.T) { testConcurrentUpserts(t, newStore(t)) })
}

// RawDocument builds a raw document fixture.
func RawDocument(source, content string) domain.RawDocument {
	year := 2015
	return domain.RawDocument{
		Source:      source,
		Type:        domain.DocumentTypePDF,
		Content:     content,
		ContentHash: domain.ContentHash(content),
		Filename:    "wassce_2015_physics.pdf",
		Year:        &year,
		CollectedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Metadata:    map[string]any{"page": float64(1)},
	}
}

// Question builds a question fixture. A zero year leaves Year unset.
func Question(source string, number int, stem, subject string, year int) domain.Question {
	q := domain.Question{
		ID:             domain.QuestionID(source, number, stem),
		Number:         number,
		Stem:           stem,
		Type:           domain.QuestionTypeMultipleChoice,
		Options:        []domain.QuestionOption{{Letter: "A", Text: "one"}, {Letter: "B", Text: "two"}},
		Subject:        subject,
		DocumentSource: source,
		ProcessedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if year != 0 {
		q.Year = &year
	}
	return q
}

func testUpsertRawDocument(t *testing.T, store driven.DocumentStore) {
	ctx := context.Background()
	doc := RawDocument("paper.pdf#page=1", "1. What is the unit of force?")

	status, err := store.UpsertRawDocument(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertInserted, status)

	status, err = store.UpsertRawDocument(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertUnchanged, status)

	doc.Content = "1. What is the unit of energy?"
	doc.ContentHash = domain.ContentHash(doc.Content)
	status, err = store.UpsertRawDocument(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertUpdated, status)

	got, err := store.GetRawDocument(ctx, doc.Source)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
	assert.Equal(t, doc.Type, got.Type)
	assert.Equal(t, doc.Filename, got.Filename)
	require.NotNil(t, got.Year)
	assert.Equal(t, 2015, *got.Year)
	assert.True(t, doc.CollectedAt.Equal(got.CollectedAt))
	assert.Equal(t, float64(1), got.Metadata["page"])

	docs, err := store.ListRawDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func testGetRawDocumentNotFound(t *testing.T, store driven.DocumentStore) {
	_, err := store.GetRawDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testListRawDocumentsOrder(t *testing.T, store driven.DocumentStore) {
	ctx := context.Background()
	for _, source := range []string{"c", "a", "b"} {
		_, err := store.UpsertRawDocument(ctx, RawDocument(source, "content "+source))
		require.NoError(t, err)
	}

	docs, err := store.ListRawDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "c", docs[0].Source)
	assert.Equal(t, "a", docs[1].Source)
	assert.Equal(t, "b", docs[2].Source)
}

func testUpsertQuestionIdempotent(t *testing.T, store driven.DocumentStore) {
	ctx := context.Background()
	q := Question("src", 1, "What is the unit of force?", domain.SubjectPhysics, 2015)

	require.NoError(t, store.UpsertQuestion(ctx, q))
	require.NoError(t, store.UpsertQuestion(ctx, q))

	all, err := store.FindQuestions(ctx, domain.QuestionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, q.ID, all[0].ID)
	assert.Equal(t, q.Options, all[0].Options)
	assert.Equal(t, q.Stem, all[0].Stem)
	assert.Equal(t, q.Type, all[0].Type)
	assert.Equal(t, q.DocumentSource, all[0].DocumentSource)
	require.NotNil(t, all[0].Year)
	assert.Equal(t, 2015, *all[0].Year)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Questions)
}

func testGetQuestionsRequestOrder(t *testing.T, store driven.DocumentStore) {
	ctx := context.Background()
	a := Question("src", 1, "First question stem here", domain.SubjectPhysics, 2015)
	b := Question("src", 2, "Second question stem here", domain.SubjectPhysics, 2015)
	c := Question("src", 3, "Third question stem here", domain.SubjectPhysics, 2015)
	for _, q := range []domain.Question{a, b, c} {
		require.NoError(t, store.UpsertQuestion(ctx, q))
	}

	got, err := store.GetQuestions(ctx, []string{c.ID, "missing", a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)

	got, err = store.GetQuestions(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testFindQuestions(t *testing.T, store driven.DocumentStore) {
	ctx := context.Background()
	fixtures := []domain.Question{
		Question("p1", 1, "Physics question one", domain.SubjectPhysics, 2015),
		Question("b1", 1, "Biology question one", domain.SubjectBiology, 2015),
		Question("p2", 1, "Physics question two", domain.SubjectPhysics, 2016),
		Question("p3", 1, "Physics question three", domain.SubjectPhysics, 0),
		Question("p4", 1, "Physics question four", domain.SubjectPhysics, 2015),
	}
	for _, q := range fixtures {
		require.NoError(t, store.UpsertQuestion(ctx, q))
	}

	physics := " Physics "
	year := 2015

	tests := []struct {
		name   string
		filter domain.QuestionFilter
		want   []string
	}{
		{"empty", domain.QuestionFilter{}, []string{fixtures[0].ID, fixtures[1].ID, fixtures[2].ID, fixtures[3].ID, fixtures[4].ID}},
		{"subject", domain.QuestionFilter{Subject: &physics}, []string{fixtures[0].ID, fixtures[2].ID, fixtures[3].ID, fixtures[4].ID}},
		{"year", domain.QuestionFilter{Year: &year}, []string{fixtures[0].ID, fixtures[1].ID, fixtures[4].ID}},
		{"both", domain.QuestionFilter{Subject: &physics, Year: &year}, []string{fixtures[0].ID, fixtures[4].ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FindQuestions(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, q := range got {
				ids[i] = q.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func testSaveEmbeddings(t *testing.T, store driven.DocumentStore) {
	ctx := context.Background()
	q := Question("src", 1, "What is the unit of force?", domain.SubjectPhysics, 2015)
	require.NoError(t, store.UpsertQuestion(ctx, q))

	vec := []float32{0.25, -1.5, 3}
	require.NoError(t, store.SaveEmbeddings(ctx, map[string][]float32{q.ID: vec, "missing": {1}}))

	got, err := store.GetQuestions(ctx, []string{q.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, vec, got[0].Embedding)

	// Re-extraction without a vector keeps the cached one.
	require.NoError(t, store.UpsertQuestion(ctx, q))
	got, err = store.GetQuestions(ctx, []string{q.ID})
	require.NoError(t, err)
	assert.Equal(t, vec, got[0].Embedding)
}

func testStats(t *testing.T, store driven.DocumentStore) {
	ctx := context.Background()
	_, err := store.UpsertRawDocument(ctx, RawDocument("a", "content a"))
	require.NoError(t, err)
	require.NoError(t, store.UpsertQuestion(ctx, Question("a", 1, "Physics question one", domain.SubjectPhysics, 2015)))
	require.NoError(t, store.UpsertQuestion(ctx, Question("a", 2, "Physics question two", domain.SubjectPhysics, 0)))
	require.NoError(t, store.UpsertQuestion(ctx, Question("a", 3, "Biology question one", domain.SubjectBiology, 2015)))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RawDocuments)
	assert.Equal(t, 3, stats.Questions)
	assert.Equal(t, map[string]int{domain.SubjectPhysics: 2, domain.SubjectBiology: 1}, stats.BySubject)
	assert.Equal(t, map[string]int{"2015": 2, "unknown": 1}, stats.ByYear)
}

func testPing(t *testing.T, store driven.DocumentStore) {
	assert.NoError(t, store.Ping(context.Background()))
}

// concurrentWriters matches several IngestAll worker pools writing at once.
const concurrentWriters = 16

func testConcurrentUpserts(t *testing.T, store driven.DocumentStore) {
	ctx := context.Background()
	shared := Question("shared.pdf", 1, "What is the SI unit of force?", domain.SubjectPhysics, 2015)
	sharedStatus := make([]domain.UpsertStatus, concurrentWriters)

	var g errgroup.Group
	for i := range concurrentWriters {
		g.Go(func() error {
			source := fmt.Sprintf("paper_%d.pdf", i)
			if _, err := store.UpsertRawDocument(ctx, RawDocument(source, fmt.Sprintf("content %d", i))); err != nil {
				return fmt.Errorf("upsert %s: %w", source, err)
			}

			status, err := store.UpsertRawDocument(ctx, RawDocument("shared.pdf", fmt.Sprintf("shared %d", i%2)))
			if err != nil {
				return fmt.Errorf("upsert shared.pdf: %w", err)
			}
			sharedStatus[i] = status

			if err := store.UpsertQuestion(ctx, shared); err != nil {
				return fmt.Errorf("upsert shared question: %w", err)
			}
			own := Question(source, 1, fmt.Sprintf("Question from paper %d about force", i), domain.SubjectPhysics, 2015)
			if err := store.UpsertQuestion(ctx, own); err != nil {
				return fmt.Errorf("upsert question for %s: %w", source, err)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	inserted := 0
	for _, status := range sharedStatus {
		if status == domain.UpsertInserted {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted, "exactly one writer creates the shared source")

	docs, err := store.ListRawDocuments(ctx)
	require.NoError(t, err)
	sources := make(map[string]int, len(docs))
	for _, d := range docs {
		sources[d.Source]++
	}
	assert.Len(t, docs, concurrentWriters+1)
	for source, n := range sources {
		assert.Equal(t, 1, n, "source %s stored more than once", source)
	}

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, concurrentWriters+1, stats.RawDocuments)
	assert.Equal(t, concurrentWriters+1, stats.Questions)

	got, err := store.GetQuestions(ctx, []string{shared.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, shared.Stem, got[0].Stem)
}

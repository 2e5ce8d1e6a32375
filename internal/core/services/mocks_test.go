package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/UceeCode/waec-ai/internal/adapters/driven/storage/memory"
	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService. Texts containing a key of
// vectors embed to that vector; anything else embeds to fallback.
type mockEmbedder struct {
	dims     int
	model    string
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	batchErr error

	embedCalls atomic.Int32
	batchCalls atomic.Int32
	batchTexts atomic.Int32
}

func newMockEmbedder(dims int) *mockEmbedder {
	fallback := make([]float32, dims)
	for i := range fallback {
		fallback[i] = 100
	}
	return &mockEmbedder{
		dims:     dims,
		model:    "mock-embed",
		vectors:  map[string][]float32{},
		fallback: fallback,
	}
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	for key, vec := range m.vectors {
		if strings.Contains(text, key) {
			return vec
		}
	}
	return m.fallback
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	m.batchTexts.Add(int32(len(texts)))
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vectorFor(text)
	}
	return out, nil
}

func (m *mockEmbedder) calls() int {
	return int(m.embedCalls.Load() + m.batchCalls.Load())
}

func (m *mockEmbedder) Dimensions() int {
	return m.dims
}

func (m *mockEmbedder) ModelName() string {
	return m.model
}

func (m *mockEmbedder) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbedder) Close() error {
	return nil
}

// mockArtifactStore implements driven.IndexArtifactStore in memory.
type mockArtifactStore struct {
	mu      sync.Mutex
	current *driven.IndexArtifacts
	saves   int
	loadErr error
	saveErr error
}

func (m *mockArtifactStore) Load(_ context.Context) (*driven.IndexArtifacts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.current == nil {
		return nil, domain.ErrNotFound
	}
	a := *m.current
	return &a, nil
}

func (m *mockArtifactStore) Save(_ context.Context, a driven.IndexArtifacts) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saves++
	a.Generation = "gen-" + strings.Repeat("x", m.saves)
	m.current = &a
	return a.Generation, nil
}

// failingStore wraps the memory store and injects errors.
type failingStore struct {
	*memory.DocumentStore
	pingErr     error
	upsertQErr  error
	findErr     error
	saveEmbErr  error
	failSources map[string]bool
}

func newFailingStore() *failingStore {
	return &failingStore{DocumentStore: memory.NewDocumentStore(), failSources: map[string]bool{}}
}

func (s *failingStore) Ping(ctx context.Context) error {
	if s.pingErr != nil {
		return s.pingErr
	}
	return s.DocumentStore.Ping(ctx)
}

func (s *failingStore) UpsertRawDocument(ctx context.Context, doc domain.RawDocument) (domain.UpsertStatus, error) {
	if s.failSources[doc.Source] {
		return "", assertErr
	}
	return s.DocumentStore.UpsertRawDocument(ctx, doc)
}

func (s *failingStore) UpsertQuestion(ctx context.Context, q domain.Question) error {
	if s.upsertQErr != nil {
		return s.upsertQErr
	}
	return s.DocumentStore.UpsertQuestion(ctx, q)
}

func (s *failingStore) FindQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.DocumentStore.FindQuestions(ctx, filter)
}

func (s *failingStore) SaveEmbeddings(ctx context.Context, vectors map[string][]float32) error {
	if s.saveEmbErr != nil {
		return s.saveEmbErr
	}
	return s.DocumentStore.SaveEmbeddings(ctx, vectors)
}

// mockLLM implements driven.LLMService.
type mockLLM struct {
	response string
	err      error
	prompts  []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string {
	return "mock-llm"
}

func (m *mockLLM) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLM) Close() error {
	return nil
}

// mockRetriever implements driving.RetrievalService.
type mockRetriever struct {
	results []domain.RetrievalResult
	err     error
	last    domain.RetrieveRequest
}

func (m *mockRetriever) Retrieve(_ context.Context, req domain.RetrieveRequest) ([]domain.RetrievalResult, error) {
	m.last = req
	return m.results, m.err
}

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockArchive implements driven.DocumentArchive.
type mockArchive struct {
	written []string
	failAt  int
}

func (m *mockArchive) Write(_ context.Context, doc domain.RawDocument) (string, error) {
	if m.failAt > 0 && len(m.written)+1 == m.failAt {
		return "", assertErr
	}
	m.written = append(m.written, doc.Source)
	return "/out/" + domain.YearKey(doc.Year) + "/" + doc.ContentHash + ".json", nil
}

// mockConfigStore implements driven.ConfigStore over a map.
type mockConfigStore struct {
	data   map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{data: map[string]any{}}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.data[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.data[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Save() error {
	return nil
}

func (m *mockConfigStore) Load() error {
	return nil
}

func (m *mockConfigStore) Path() string {
	return "/tmp/config.toml"
}

// mockAIValidator implements driven.AIConfigValidator.
type mockAIValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

// --- Test helpers ---

var assertErr = errors.New("injected failure")

func ptr[T any](v T) *T {
	return &v
}

// question builds a stored question with two options.
func question(source string, number int, stem, subject string, year int) domain.Question {
	q := domain.Question{
		ID:             domain.QuestionID(source, number, stem),
		Number:         number,
		Stem:           stem,
		Type:           domain.QuestionTypeMultipleChoice,
		Options:        []domain.QuestionOption{{Letter: "A", Text: "yes"}, {Letter: "B", Text: "no"}},
		Subject:        subject,
		DocumentSource: source,
	}
	if year != 0 {
		q.Year = &year
	}
	return q
}

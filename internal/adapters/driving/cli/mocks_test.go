package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

type mockIngestionService struct {
	mu   sync.Mutex
	docs []domain.RawDocument
	err  error
}

func (m *mockIngestionService) Ingest(ctx context.Context, doc domain.RawDocument) (domain.IngestResult, error) {
	results, err := m.IngestAll(ctx, []domain.RawDocument{doc})
	if err != nil {
		return domain.IngestResult{}, err
	}
	return results[0], nil
}

func (m *mockIngestionService) IngestAll(_ context.Context, docs []domain.RawDocument) ([]domain.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.docs = append(m.docs, docs...)
	results := make([]domain.IngestResult, len(docs))
	for i, d := range docs {
		results[i] = domain.IngestResult{Source: d.Source, Status: domain.UpsertInserted, Found: 2, Stored: 2}
	}
	return results, nil
}

type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error
	lastReq domain.RetrieveRequest
}

func (m *mockRetrievalService) Retrieve(_ context.Context, req domain.RetrieveRequest) ([]domain.RetrievalResult, error) {
	m.lastReq = req
	return m.results, m.err
}

type mockIndexService struct {
	status     domain.IndexStatus
	rebuildErr error
	rebuilds   int
}

func (m *mockIndexService) Rebuild(_ context.Context) (domain.IndexStatus, error) {
	m.rebuilds++
	if m.rebuildErr != nil {
		return domain.IndexStatus{}, m.rebuildErr
	}
	return m.status, nil
}

func (m *mockIndexService) IndexStatus() domain.IndexStatus {
	return m.status
}

type mockCorpusService struct {
	stats domain.CorpusStats
	err   error
}

func (m *mockCorpusService) Stats(_ context.Context) (domain.CorpusStats, error) {
	return m.stats, m.err
}

func (m *mockCorpusService) ExportByYear(_ context.Context) (int, error) {
	return 0, errors.New("not used")
}

type mockAnswerService struct {
	answer  *domain.Answer
	err     error
	lastReq domain.RetrieveRequest
}

func (m *mockAnswerService) Answer(_ context.Context, req domain.RetrieveRequest) (*domain.Answer, error) {
	m.lastReq = req
	return m.answer, m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	getErr      error
	setErr      error
	validateErr error
	set         map[string]string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// setupTestServices clears every service and flag so each test starts from
// a blank command tree. The returned func restores the previous services.
func setupTestServices() func() {
	saved := Services{
		Ingestion:   ingestionService,
		Retrieval:   retrievalService,
		Index:       indexService,
		Corpus:      corpusService,
		Answer:      answerService,
		Settings:    settingsService,
		Normalisers: normaliser,
		ExportTo:    exportTo,
		ServerAddr:  serverAddr,
		OpenIndex:   openIndex,
	}
	SetServices(Services{})
	resetFlags()
	return func() {
		SetServices(saved)
		resetFlags()
	}
}

func resetFlags() {
	verbose = false
	ingestWatch = false
	indexJSON = false
	retrieveSubject, retrieveYear, retrieveK, retrieveJSON = "", 0, 0, false
	answerSubject, answerYear, answerK, answerShowContext = "", 0, 0, false
	statusJSON = false
	exportOut = "waec_export"
	serveAddr = ""
	versionShort = false
	mcpAddr = ""
}

// run executes the root command with args and returns what it printed.
func run(args ...string) (string, error) {
	return runWithInput("", args...)
}

func runWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func intPtr(i int) *int { return &i }

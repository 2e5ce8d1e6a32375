package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/normalisers"
)

func newTestServer(t *testing.T, ports *Ports) *httptest.Server {
	t.Helper()
	if ports.Retrieval == nil {
		ports.Retrieval = &mockRetrievalService{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestNewServer_RequiresRetrieval(t *testing.T) {
	_, err := NewServer(&Ports{})

	assert.ErrorIs(t, err, ErrMissingRetrievalService)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &Ports{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]bool](t, resp)
	assert.True(t, body["ok"])
}

func TestQuestions(t *testing.T) {
	year := 2015
	retrieval := &mockRetrievalService{results: []domain.RetrievalResult{{
		Question: domain.Question{ID: "q-1", Stem: "Define velocity.", Subject: "physics", Year: &year},
		Distance: 0.5,
		Ranked:   true,
	}}}
	srv := newTestServer(t, &Ports{Retrieval: retrieval})

	resp, err := http.Get(srv.URL + "/api/v1/questions?q=velocity&subject=physics&year=2015&k=3")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.EqualValues(t, 1, body["count"])
	first := body["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "q-1", first["question"].(map[string]any)["question_id"])
	assert.Equal(t, true, first["ranked"])

	assert.Equal(t, "velocity", retrieval.last.Query)
	assert.Equal(t, 3, retrieval.last.K)
	require.NotNil(t, retrieval.last.Filter.Subject)
	assert.Equal(t, "physics", *retrieval.last.Filter.Subject)
	require.NotNil(t, retrieval.last.Filter.Year)
	assert.Equal(t, 2015, *retrieval.last.Filter.Year)
}

func TestQuestions_EmptyResultIsArray(t *testing.T) {
	srv := newTestServer(t, &Ports{})

	resp, err := http.Get(srv.URL + "/api/v1/questions")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, []any{}, body["results"])
}

func TestQuestions_BadParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric year", "year=twenty"},
		{"non-numeric k", "k=many"},
		{"negative k", "k=-1"},
	}

	srv := newTestServer(t, &Ports{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/v1/questions?" + tt.query)
			require.NoError(t, err)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[errorBody](t, resp)
			assert.Equal(t, "invalid_input", body.Error.Code)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrUnsupportedType, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrRebuildInProgress, http.StatusConflict},
		{domain.ErrEmbeddingUnavailable, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			srv := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{err: tt.err}})

			resp, err := http.Get(srv.URL + "/api/v1/questions?q=x")
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t, &Ports{
		Corpus: &mockCorpusService{stats: domain.CorpusStats{RawDocuments: 4, Questions: 120}},
		Index:  &mockIndexService{status: domain.IndexStatus{Loaded: true, Entries: 120, Generation: "g1"}},
	})

	resp, err := http.Get(srv.URL + "/api/v1/status")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[statusResponse](t, resp)
	require.NotNil(t, body.Corpus)
	require.NotNil(t, body.Index)
	assert.Equal(t, 120, body.Corpus.Questions)
	assert.Equal(t, "g1", body.Index.Generation)
}

func TestRebuild(t *testing.T) {
	tests := []struct {
		name  string
		index *mockIndexService
		want  int
	}{
		{"ok", &mockIndexService{status: domain.IndexStatus{Loaded: true, Entries: 3}}, http.StatusOK},
		{"in progress", &mockIndexService{rebuildErr: domain.ErrRebuildInProgress}, http.StatusConflict},
		{"embedding failure", &mockIndexService{rebuildErr: errors.New("embed batch 0: timeout")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &Ports{Index: tt.index})

			resp, err := http.Post(srv.URL+"/api/v1/index/rebuild", "application/json", nil)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, 1, tt.index.rebuilds)
		})
	}
}

func TestNotConfiguredRoutes(t *testing.T) {
	srv := newTestServer(t, &Ports{})

	for _, path := range []string{"/api/v1/index/rebuild", "/api/v1/answer", "/api/v1/documents"} {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode, path)
	}
}

func TestAnswer(t *testing.T) {
	answer := &mockAnswerService{answer: &domain.Answer{Text: "Use v = u + at.", Model: "llama3.2"}}
	srv := newTestServer(t, &Ports{Answer: answer})

	resp, err := http.Post(srv.URL+"/api/v1/answer", "application/json",
		strings.NewReader(`{"query":"how do I find final velocity?","subject":"physics","year":2012,"k":4}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "Use v = u + at.", body["text"])
	assert.Equal(t, 4, answer.last.K)
	require.NotNil(t, answer.last.Filter.Year)
	assert.Equal(t, 2012, *answer.last.Filter.Year)
}

func TestAnswer_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"invalid json", `{`, nil, http.StatusBadRequest},
		{"blank query", `{"query":""}`, domain.ErrInvalidInput, http.StatusBadRequest},
		{"llm down", `{"query":"x"}`, errors.New("ollama: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &Ports{Answer: &mockAnswerService{err: tt.err}})

			resp, err := http.Post(srv.URL+"/api/v1/answer", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestDocuments_JSON(t *testing.T) {
	ingestion := &mockIngestionService{result: domain.IngestResult{Status: domain.UpsertInserted, Found: 2, Stored: 2}}
	srv := newTestServer(t, &Ports{Ingestion: ingestion})

	resp, err := http.Post(srv.URL+"/api/v1/documents", "application/json",
		strings.NewReader(`{"source":"https://example.com/p","content":"1. Q one\n2. Q two","type":"web","year":2019}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[documentsResponse](t, resp)
	require.Len(t, body.Results, 1)
	assert.Equal(t, 2, body.Results[0].Stored)

	require.Len(t, ingestion.ingested, 1)
	doc := ingestion.ingested[0]
	assert.Equal(t, domain.DocumentTypeWeb, doc.Type)
	require.NotNil(t, doc.Year)
	assert.Equal(t, 2019, *doc.Year)
}

func TestDocuments_JSONErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"bad type", `{"source":"a","content":"b","type":"docx"}`, nil, http.StatusBadRequest},
		{"ingest rejects", `{"source":"","content":""}`, domain.ErrInvalidInput, http.StatusBadRequest},
		{"store failure", `{"source":"a","content":"b"}`, errors.New("upsert raw document: disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &Ports{Ingestion: &mockIngestionService{err: tt.err}})

			resp, err := http.Post(srv.URL+"/api/v1/documents", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func multipartBody(t *testing.T, filename, content, source string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if source != "" {
		require.NoError(t, mw.WriteField("source", source))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDocuments_Upload(t *testing.T) {
	ingestion := &mockIngestionService{}
	srv := newTestServer(t, &Ports{Ingestion: ingestion, Normalisers: normalisers.NewDefaultRegistry()})

	body, contentType := multipartBody(t, "physics_2014.txt", "1. What is inertia?\nA. mass\nB. force", "")
	resp, err := http.Post(srv.URL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[documentsResponse](t, resp)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "physics_2014.txt", out.Results[0].Source)

	require.Len(t, ingestion.ingested, 1)
	assert.Equal(t, domain.DocumentTypeText, ingestion.ingested[0].Type)
	assert.Contains(t, ingestion.ingested[0].Content, "What is inertia?")
}

func TestDocuments_UploadSourceOverride(t *testing.T) {
	ingestion := &mockIngestionService{}
	srv := newTestServer(t, &Ports{Ingestion: ingestion, Normalisers: normalisers.NewDefaultRegistry()})

	body, contentType := multipartBody(t, "upload.txt", "1. Name two acids.", "archive/chem_2003.txt")
	resp, err := http.Post(srv.URL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, ingestion.ingested, 1)
	assert.Equal(t, "archive/chem_2003.txt", ingestion.ingested[0].Source)
}

func TestDocuments_UploadErrors(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		content   string
		ingestion *mockIngestionService
		want      int
	}{
		{
			name:      "unsupported type",
			filename:  "paper.docx",
			content:   "PK\x03\x04 binary",
			ingestion: &mockIngestionService{},
			want:      http.StatusBadRequest,
		},
		{
			name:      "empty file",
			filename:  "empty.txt",
			content:   "   ",
			ingestion: &mockIngestionService{},
			want:      http.StatusBadRequest,
		},
		{
			name:      "store unreachable",
			filename:  "ok.txt",
			content:   "1. A question",
			ingestion: &mockIngestionService{unreached: true, allErr: errors.New("document store unreachable")},
			want:      http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &Ports{Ingestion: tt.ingestion, Normalisers: normalisers.NewDefaultRegistry()})

			body, contentType := multipartBody(t, tt.filename, tt.content, "")
			resp, err := http.Post(srv.URL+"/api/v1/documents", contentType, body)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestDocuments_UploadPartialFailure(t *testing.T) {
	ingestion := &mockIngestionService{allErr: errors.New("page 2: upsert failed")}
	srv := newTestServer(t, &Ports{Ingestion: ingestion, Normalisers: normalisers.NewDefaultRegistry()})

	body, contentType := multipartBody(t, "notes.txt", "1. Question", "")
	resp, err := http.Post(srv.URL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[documentsResponse](t, resp)
	assert.Len(t, out.Results, 1)
	assert.Contains(t, out.Error, "upsert failed")
}

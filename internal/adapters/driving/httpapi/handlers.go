package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/normalisers"
)

var errNotConfigured = errors.New("not configured on this server")

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type questionsResponse struct {
	Results []domain.RetrievalResult `json:"results"`
	Count   int                      `json:"count"`
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := domain.RetrieveRequest{Query: q.Get("q")}

	if subject := q.Get("subject"); subject != "" {
		req.Filter.Subject = &subject
	}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			writeErr(w, fmt.Errorf("%w: year must be an integer", domain.ErrInvalidInput))
			return
		}
		req.Filter.Year = &year
	}
	if raw := q.Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k < 0 {
			writeErr(w, fmt.Errorf("%w: k must be a non-negative integer", domain.ErrInvalidInput))
			return
		}
		req.K = k
	}

	results, err := s.ports.Retrieval.Retrieve(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	if results == nil {
		results = []domain.RetrievalResult{}
	}
	writeJSON(w, http.StatusOK, questionsResponse{Results: results, Count: len(results)})
}

type statusResponse struct {
	Corpus *domain.CorpusStats `json:"corpus,omitempty"`
	Index  *domain.IndexStatus `json:"index,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var resp statusResponse
	if s.ports.Corpus != nil {
		stats, err := s.ports.Corpus.Stats(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		resp.Corpus = &stats
	}
	if s.ports.Index != nil {
		status := s.ports.Index.IndexStatus()
		resp.Index = &status
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if s.ports.Index == nil {
		writeErr(w, fmt.Errorf("index rebuild: %w", errNotConfigured))
		return
	}
	status, err := s.ports.Index.Rebuild(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type answerRequest struct {
	Query   string `json:"query"`
	Subject string `json:"subject,omitempty"`
	Year    int    `json:"year,omitempty"`
	K       int    `json:"k,omitempty"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if s.ports.Answer == nil {
		writeErr(w, fmt.Errorf("answer: %w", errNotConfigured))
		return
	}

	var body answerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, fmt.Errorf("%w: invalid json: %w", domain.ErrInvalidInput, err))
		return
	}

	req := domain.RetrieveRequest{Query: body.Query, K: body.K}
	if body.Subject != "" {
		req.Filter.Subject = &body.Subject
	}
	if body.Year != 0 {
		req.Filter.Year = &body.Year
	}

	answer, err := s.ports.Answer.Answer(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// documentRequest is the JSON form of an already-extracted document.
type documentRequest struct {
	Source   string         `json:"source"`
	Content  string         `json:"content"`
	Type     string         `json:"type,omitempty"`
	Filename string         `json:"filename,omitempty"`
	Year     *int           `json:"year,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type documentsResponse struct {
	Results []domain.IngestResult `json:"results"`
	Error   string                `json:"error,omitempty"`
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if s.ports.Ingestion == nil {
		writeErr(w, fmt.Errorf("ingestion: %w", errNotConfigured))
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		doc, err := documentFromJSON(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		result, err := s.ports.Ingestion.Ingest(r.Context(), doc)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, documentsResponse{Results: []domain.IngestResult{result}})
		return
	}

	docs, err := s.documentsFromUpload(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	// A PDF yields one document per page; pages that fail are reported
	// alongside the pages that succeeded.
	results, err := s.ports.Ingestion.IngestAll(r.Context(), docs)
	if err != nil && results == nil {
		writeErr(w, err)
		return
	}
	resp := documentsResponse{Results: results}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func documentFromJSON(r *http.Request) (domain.RawDocument, error) {
	var body documentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return domain.RawDocument{}, fmt.Errorf("%w: invalid json: %w", domain.ErrInvalidInput, err)
	}

	docType := domain.DocumentType(strings.ToLower(body.Type))
	if docType == "" {
		docType = domain.DocumentTypeText
	}
	if !docType.IsValid() {
		return domain.RawDocument{}, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, body.Type)
	}

	return domain.RawDocument{
		Source:   body.Source,
		Type:     docType,
		Content:  body.Content,
		Filename: body.Filename,
		Year:     body.Year,
		Metadata: body.Metadata,
	}, nil
}

// documentsFromUpload normalises a multipart "file" field. The optional
// "source" field overrides the uploaded file name as the document key.
func (s *Server) documentsFromUpload(r *http.Request) ([]domain.RawDocument, error) {
	if s.ports.Normalisers == nil {
		return nil, fmt.Errorf("file upload: %w", errNotConfigured)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: file field is required: %w", domain.ErrInvalidInput, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	uri := r.FormValue("source")
	if uri == "" {
		uri = path.Base(header.Filename)
	}

	return s.ports.Normalisers.Normalise(r.Context(), driven.SourceFile{
		URI:      uri,
		MIMEType: normalisers.DetectMIMEType(header.Filename, content),
		Content:  content,
	})
}

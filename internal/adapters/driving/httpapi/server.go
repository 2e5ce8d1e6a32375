// Package httpapi exposes retrieval, ingestion and index control over a JSON
// HTTP API built on chi.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/v1/questions?q=&subject=&year=&k=
//	POST /api/v1/documents        (JSON body or multipart "file" upload)
//	POST /api/v1/index/rebuild
//	GET  /api/v1/status
//	POST /api/v1/answer
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
	"github.com/UceeCode/waec-ai/internal/logger"
)

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("httpapi: retrieval service is required")

// MaxUploadBytes caps request bodies on the documents endpoint.
const MaxUploadBytes = 32 << 20

// Ports aggregates the services the API calls. Only Retrieval is required;
// routes backed by a nil port answer 501.
type Ports struct {
	Retrieval   driving.RetrievalService
	Index       driving.IndexService
	Ingestion   driving.IngestionService
	Corpus      driving.CorpusService
	Answer      driving.AnswerService
	Normalisers driven.NormaliserRegistry
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

// Server serves the HTTP API.
type Server struct {
	ports  *Ports
	router chi.Router
}

// NewServer builds the router.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	s := &Server{ports: ports}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/questions", s.handleQuestions)
		r.Get("/status", s.handleStatus)
		r.Post("/answer", s.handleAnswer)
		r.Post("/index/rebuild", s.handleRebuild)
		r.With(middleware.RequestSize(MaxUploadBytes)).Post("/documents", s.handleDocuments)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}

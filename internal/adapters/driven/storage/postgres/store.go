// Package postgres provides a DocumentStore backed by PostgreSQL through a
// pgx connection pool. The schema is created on open.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

//go:embed schema.sql
var schema string

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is a PostgreSQL-backed driven.DocumentStore.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to dsn and ensures the schema exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// UpsertRawDocument inserts or updates a raw document keyed by source. The
// conflict update only fires when the content hash differs; xmax = 0
// distinguishes a fresh insert from an update.
func (s *Store) UpsertRawDocument(ctx context.Context, doc domain.RawDocument) (domain.UpsertStatus, error) {
	metadata := doc.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	var inserted bool
	err = s.pool.QueryRow(ctx, `
		INSERT INTO raw_documents (source, doc_type, content, content_hash, filename, year, collected_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source) DO UPDATE SET
			doc_type = excluded.doc_type,
			content = excluded.content,
			content_hash = excluded.content_hash,
			filename = excluded.filename,
			year = excluded.year,
			collected_at = excluded.collected_at,
			metadata = excluded.metadata,
			updated_at = now()
		WHERE raw_documents.content_hash <> excluded.content_hash
		RETURNING (xmax = 0)
	`, doc.Source, string(doc.Type), doc.Content, doc.ContentHash, doc.Filename, doc.Year,
		doc.CollectedAt.UTC(), metadataJSON).Scan(&inserted)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.UpsertUnchanged, nil
	case err != nil:
		return "", fmt.Errorf("upsert raw document: %w", err)
	case inserted:
		return domain.UpsertInserted, nil
	default:
		return domain.UpsertUpdated, nil
	}
}

// GetRawDocument retrieves a raw document by source.
func (s *Store) GetRawDocument(ctx context.Context, source string) (*domain.RawDocument, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT source, doc_type, content, content_hash, filename, year, collected_at, metadata
		FROM raw_documents WHERE source = $1
	`, source)
	doc, err := scanRawDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get raw document: %w", err)
	}
	return doc, nil
}

// ListRawDocuments returns every raw document in insertion order.
func (s *Store) ListRawDocuments(ctx context.Context) ([]domain.RawDocument, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source, doc_type, content, content_hash, filename, year, collected_at, metadata
		FROM raw_documents ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list raw documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.RawDocument
	for rows.Next() {
		doc, err := scanRawDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raw document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

const questionColumns = `question_id, question_number, question_text, question_type, options,
	subject, year, document_source, embedding, processed_at`

// UpsertQuestion inserts or replaces a question keyed by question_id.
func (s *Store) UpsertQuestion(ctx context.Context, q domain.Question) error {
	options := q.Options
	if options == nil {
		options = []domain.QuestionOption{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO questions (`+questionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (question_id) DO UPDATE SET
			question_number = excluded.question_number,
			question_text = excluded.question_text,
			question_type = excluded.question_type,
			options = excluded.options,
			subject = excluded.subject,
			year = excluded.year,
			document_source = excluded.document_source,
			embedding = COALESCE(excluded.embedding, questions.embedding),
			processed_at = excluded.processed_at
	`, q.ID, q.Number, q.Stem, string(q.Type), optionsJSON, q.Subject, q.Year,
		q.DocumentSource, q.Embedding, q.ProcessedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert question: %w", err)
	}
	return nil
}

// GetQuestions returns questions for ids in request order, skipping missing ids.
func (s *Store) GetQuestions(ctx context.Context, ids []string) ([]domain.Question, error) {
	if len(ids) == 0 {
		return []domain.Question{}, nil
	}

	found, err := s.queryQuestions(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE question_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}

	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// FindQuestions returns questions matching the filter in insertion order.
func (s *Store) FindQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	filter = filter.Normalised()

	var conditions []string
	var args []any
	if filter.Subject != nil {
		args = append(args, *filter.Subject)
		conditions = append(conditions, fmt.Sprintf("LOWER(subject) = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}

	query := `SELECT ` + questionColumns + ` FROM questions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	return s.queryQuestions(ctx, query, args...)
}

// SaveEmbeddings caches vectors against question ids in one batch.
func (s *Store) SaveEmbeddings(ctx context.Context, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for id, vec := range vectors {
		batch.Queue(`UPDATE questions SET embedding = $1 WHERE question_id = $2`, vec, id)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save embeddings: %w", err)
	}
	return nil
}

// Stats summarises stored records.
func (s *Store) Stats(ctx context.Context) (domain.CorpusStats, error) {
	stats := domain.CorpusStats{
		BySubject: make(map[string]int),
		ByYear:    make(map[string]int),
	}

	err := s.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM raw_documents), (SELECT COUNT(*) FROM questions)
	`).Scan(&stats.RawDocuments, &stats.Questions)
	if err != nil {
		return stats, fmt.Errorf("count records: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT subject, year, COUNT(*) FROM questions GROUP BY subject, year`)
	if err != nil {
		return stats, fmt.Errorf("group questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var subject string
		var year *int
		var count int
		if err := rows.Scan(&subject, &year, &count); err != nil {
			return stats, fmt.Errorf("scan group: %w", err)
		}
		stats.BySubject[subject] += count
		stats.ByYear[domain.YearKey(year)] += count
	}
	return stats, rows.Err()
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func scanRawDocument(row pgx.Row) (*domain.RawDocument, error) {
	var doc domain.RawDocument
	var docType string
	var metadataJSON []byte

	if err := row.Scan(&doc.Source, &docType, &doc.Content, &doc.ContentHash, &doc.Filename,
		&doc.Year, &doc.CollectedAt, &metadataJSON); err != nil {
		return nil, err
	}
	doc.Type = domain.DocumentType(docType)
	if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &doc, nil
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var q domain.Question
	var qType string
	var optionsJSON []byte

	if err := row.Scan(&q.ID, &q.Number, &q.Stem, &qType, &optionsJSON, &q.Subject, &q.Year,
		&q.DocumentSource, &q.Embedding, &q.ProcessedAt); err != nil {
		return nil, err
	}
	q.Type = domain.QuestionType(qType)
	if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	if len(q.Options) == 0 {
		q.Options = nil
	}
	return &q, nil
}

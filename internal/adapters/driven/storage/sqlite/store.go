package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/UceeCode/waec-ai/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

// maxInParams bounds the ids bound into a single IN (...) clause.
const maxInParams = 500

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is a SQLite-backed driven.DocumentStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.waec/data/waec.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".waec", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "waec.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Raw Documents ====================

// UpsertRawDocument inserts or updates a raw document keyed by source in a
// single statement. The conflict update only fires when the content hash
// differs, and the returned revision tells an insert (1) from an update.
// It must stay a single statement: a deferred read-then-write transaction
// cannot upgrade its lock under concurrent writers and fails with
// SQLITE_BUSY without waiting on busy_timeout.
func (s *Store) UpsertRawDocument(ctx context.Context, doc domain.RawDocument) (domain.UpsertStatus, error) {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}
	if doc.Metadata == nil {
		metadataJSON = []byte("{}")
	}

	now := time.Now().UTC()
	var revision int
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO raw_documents (source, doc_type, content, content_hash, filename, year,
			collected_at, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			doc_type = excluded.doc_type,
			content = excluded.content,
			content_hash = excluded.content_hash,
			filename = excluded.filename,
			year = excluded.year,
			collected_at = excluded.collected_at,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at,
			revision = raw_documents.revision + 1
		WHERE raw_documents.content_hash <> excluded.content_hash
		RETURNING revision
	`, doc.Source, string(doc.Type), doc.Content, doc.ContentHash, doc.Filename, nullInt(doc.Year),
		doc.CollectedAt.UTC(), string(metadataJSON), now, now).Scan(&revision)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.UpsertUnchanged, nil
	case err != nil:
		return "", fmt.Errorf("saving raw document: %w", err)
	case revision == 1:
		return domain.UpsertInserted, nil
	default:
		return domain.UpsertUpdated, nil
	}
}

// GetRawDocument retrieves a raw document by source.
func (s *Store) GetRawDocument(ctx context.Context, source string) (*domain.RawDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT source, doc_type, content, content_hash, filename, year, collected_at, metadata
		FROM raw_documents WHERE source = ?
	`, source)
	doc, err := scanRawDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting raw document: %w", err)
	}
	return doc, nil
}

// ListRawDocuments returns every raw document in insertion order.
func (s *Store) ListRawDocuments(ctx context.Context) ([]domain.RawDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, doc_type, content, content_hash, filename, year, collected_at, metadata
		FROM raw_documents ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing raw documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.RawDocument
	for rows.Next() {
		doc, err := scanRawDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning raw document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// ==================== Questions ====================

const questionColumns = `question_id, question_number, question_text, question_type, options,
	subject, year, document_source, embedding, processed_at`

// UpsertQuestion inserts or replaces a question keyed by question_id.
// The row id is kept on replace, so insertion order is stable.
func (s *Store) UpsertQuestion(ctx context.Context, q domain.Question) error {
	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("marshalling options: %w", err)
	}
	if q.Options == nil {
		optionsJSON = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions (`+questionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(question_id) DO UPDATE SET
			question_number = excluded.question_number,
			question_text = excluded.question_text,
			question_type = excluded.question_type,
			options = excluded.options,
			subject = excluded.subject,
			year = excluded.year,
			document_source = excluded.document_source,
			embedding = COALESCE(excluded.embedding, questions.embedding),
			processed_at = excluded.processed_at
	`, q.ID, q.Number, q.Stem, string(q.Type), string(optionsJSON), q.Subject, nullInt(q.Year),
		q.DocumentSource, embeddingArg(q.Embedding), q.ProcessedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving question: %w", err)
	}
	return nil
}

// GetQuestions returns questions for ids in request order, skipping missing ids.
func (s *Store) GetQuestions(ctx context.Context, ids []string) ([]domain.Question, error) {
	byID := make(map[string]domain.Question, len(ids))
	for start := 0; start < len(ids); start += maxInParams {
		end := min(start+maxInParams, len(ids))
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		questions, err := s.queryQuestions(ctx,
			`SELECT `+questionColumns+` FROM questions WHERE question_id IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, err
		}
		for _, q := range questions {
			byID[q.ID] = q
		}
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

	query := `SELECT ` + questionColumns + ` FROM questions`
	var conditions []string
	var args []any
	if filter.Subject != nil {
		conditions = append(conditions, "LOWER(subject) = ?")
		args = append(args, *filter.Subject)
	}
	if filter.Year != nil {
		conditions = append(conditions, "year = ?")
		args = append(args, *filter.Year)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	return s.queryQuestions(ctx, query, args...)
}

// SaveEmbeddings caches vectors against question ids in one transaction.
func (s *Store) SaveEmbeddings(ctx context.Context, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE questions SET embedding = ? WHERE question_id = ?`)
	if err != nil {
		return fmt.Errorf("preparing embedding update: %w", err)
	}
	defer stmt.Close()

	for id, vec := range vectors {
		if _, err := stmt.ExecContext(ctx, float32SliceToBytes(vec), id); err != nil {
			return fmt.Errorf("saving embedding for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing embeddings: %w", err)
	}
	return nil
}

// Stats summarises stored records.
func (s *Store) Stats(ctx context.Context) (domain.CorpusStats, error) {
	stats := domain.CorpusStats{
		BySubject: make(map[string]int),
		ByYear:    make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_documents`).Scan(&stats.RawDocuments); err != nil {
		return stats, fmt.Errorf("counting raw documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&stats.Questions); err != nil {
		return stats, fmt.Errorf("counting questions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT subject, year, COUNT(*) FROM questions GROUP BY subject, year`)
	if err != nil {
		return stats, fmt.Errorf("grouping questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var subject string
		var year sql.NullInt64
		var count int
		if err := rows.Scan(&subject, &year, &count); err != nil {
			return stats, fmt.Errorf("scanning group: %w", err)
		}
		stats.BySubject[subject] += count
		stats.ByYear[domain.YearKey(intPtr(year))] += count
	}
	return stats, rows.Err()
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// ==================== Helpers ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRawDocument(row scanner) (*domain.RawDocument, error) {
	var doc domain.RawDocument
	var docType, metadataJSON string
	var year sql.NullInt64

	if err := row.Scan(&doc.Source, &docType, &doc.Content, &doc.ContentHash, &doc.Filename,
		&year, &doc.CollectedAt, &metadataJSON); err != nil {
		return nil, err
	}
	doc.Type = domain.DocumentType(docType)
	doc.Year = intPtr(year)
	if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	return &doc, nil
}

func scanQuestion(row scanner) (*domain.Question, error) {
	var q domain.Question
	var qType, optionsJSON string
	var year sql.NullInt64
	var embedding []byte

	if err := row.Scan(&q.ID, &q.Number, &q.Stem, &qType, &optionsJSON, &q.Subject, &year,
		&q.DocumentSource, &embedding, &q.ProcessedAt); err != nil {
		return nil, err
	}
	q.Type = domain.QuestionType(qType)
	q.Year = intPtr(year)
	q.Embedding = bytesToFloat32Slice(embedding)
	if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
		return nil, fmt.Errorf("unmarshalling options: %w", err)
	}
	if len(q.Options) == 0 {
		q.Options = nil
	}
	return &q, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// embeddingArg binds a missing vector as NULL rather than an empty blob.
func embeddingArg(vec []float32) any {
	if len(vec) == 0 {
		return nil
	}
	return float32SliceToBytes(vec)
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

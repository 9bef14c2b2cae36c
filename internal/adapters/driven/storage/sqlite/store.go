// Package sqlite provides a SQLite-backed vector store. Embeddings are kept
// as little-endian float32 blobs and searched with a brute-force cosine scan,
// which is plenty for corpora in the thousands of chunks.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/rackmesa/ragstack/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/rackmesa/ragstack/internal/core/domain"
	"github.com/rackmesa/ragstack/internal/core/ports/driven"
)

// dimensionsKey is the store_meta key holding the pinned embedding
// dimensionality.
const dimensionsKey = "embedding_dimensions"

var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-based implementation of driven.VectorStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ragstack/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragstack", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ragstack.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
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

// FindDocumentByName returns the document with the given file name.
func (s *Store) FindDocumentByName(ctx context.Context, fileName string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, file_path, content, ingested_at, chunk_count
		FROM documents WHERE file_name = ?
	`, fileName)
	return scanDocument(row)
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, file_path, content, ingested_at, chunk_count
		FROM documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

// InsertDocument persists a new document and all of its chunks in a single
// transaction, so a failure partway through leaves nothing behind.
func (s *Store) InsertDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	dims, err := s.EmbeddingDimensions(ctx)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if dims == 0 {
			dims = len(chunk.Embedding)
		} else if len(chunk.Embedding) != dims {
			return fmt.Errorf("chunk %d has %d dimensions, store has %d: %w",
				chunk.Index, len(chunk.Embedding), dims, domain.ErrDimensionMismatch)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ingestedAt := doc.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, file_name, file_path, content, ingested_at, chunk_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.FileName, doc.FilePath, doc.Content, ingestedAt, len(chunks))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("inserting document: %w", err)
	}

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO chunks (id, document_id, content, chunk_index, embedding)
			VALUES (?, ?, ?, ?, ?)
		`, chunk.ID, doc.ID, chunk.Content, chunk.Index, embeddingBlob)
		if err != nil {
			return fmt.Errorf("inserting chunk %d: %w", chunk.Index, err)
		}
	}

	if dims > 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO store_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, dimensionsKey, strconv.Itoa(dims))
		if err != nil {
			return fmt.Errorf("saving store metadata: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListDocuments returns all documents ordered by file name, without their
// full content.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, file_path, ingested_at, chunk_count
		FROM documents ORDER BY file_name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		var ingestedAt sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.FileName, &doc.FilePath, &ingestedAt, &doc.ChunkCount); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if ingestedAt.Valid {
			doc.IngestedAt = ingestedAt.Time
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document; its chunks go with it via the foreign
// key cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NearestChunks scans all stored chunks and returns up to k with the
// smallest cosine distance to the query vector, ascending; ties break by
// chunk index, then file name.
func (s *Store) NearestChunks(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.content, c.chunk_index, c.embedding, d.file_name
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []domain.RetrievedChunk
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		var fileName string
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.Index, &embeddingBlob, &fileName); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		if len(chunk.Embedding) == 0 {
			continue
		}
		hits = append(hits, domain.RetrievedChunk{
			Chunk:    chunk,
			FileName: fileName,
			Distance: domain.CosineDistance(vector, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		if hits[i].Index != hits[j].Index {
			return hits[i].Index < hits[j].Index
		}
		return hits[i].FileName < hits[j].FileName
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// EmbeddingDimensions returns the dimensionality pinned by the first insert,
// or zero for an empty store.
func (s *Store) EmbeddingDimensions(ctx context.Context) (int, error) {
	var value string
	row := s.db.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", dimensionsKey)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading store metadata: %w", err)
	}

	dims, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing stored dimensions %q: %w", value, err)
	}
	return dims, nil
}

// scanDocument scans a single document row, mapping sql.ErrNoRows to
// domain.ErrNotFound.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var ingestedAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.FileName, &doc.FilePath, &doc.Content, &ingestedAt, &doc.ChunkCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	if ingestedAt.Valid {
		doc.IngestedAt = ingestedAt.Time
	}
	return &doc, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
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

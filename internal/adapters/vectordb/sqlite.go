// Package vectordb provides vector store adapters implementing ports.VectorStore.
package vectordb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/0xcro3dile/minirag/internal/domain/entities"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "docs"

var collectionNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore persists documents and embeddings in a SQLite file.
// Each collection is one table; search is brute-force cosine similarity.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// NewSQLiteStore opens (or creates) <dataPath>/vectors.db and ensures the
// collection table exists.
func NewSQLiteStore(dataPath, collection string) (*SQLiteStore, error) {
	if dataPath == "" {
		dataPath = "./db"
	}
	if collection == "" {
		collection = DefaultCollection
	}
	if !collectionNameRe.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dsn := filepath.Join(dataPath, "vectors.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db, table: collection}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

// initSchema creates the collection table.
func (s *SQLiteStore) initSchema() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_at DATETIME NOT NULL
	);
	`, s.table)
	_, err := s.db.Exec(schema)
	return err
}

// Store saves documents with their embeddings. Existing ids are rejected.
func (s *SQLiteStore) Store(ctx context.Context, docs []entities.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, content, embedding, created_at) VALUES (?, ?, ?, ?)`, s.table))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		createdAt := doc.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, doc.ID, doc.Content, encodeEmbedding(doc.Embedding), createdAt); err != nil {
			return fmt.Errorf("inserting document %s: %w", doc.ID, err)
		}
	}

	return tx.Commit()
}

// Search finds the most similar documents to a query embedding.
func (s *SQLiteStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, content, embedding, created_at FROM %s`, s.table))
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var results []entities.SearchResult
	for rows.Next() {
		var doc entities.Document
		var blob []byte
		if err := rows.Scan(&doc.ID, &doc.Content, &blob, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		doc.Embedding, err = decodeEmbedding(blob)
		if err != nil {
			continue // Skip corrupted embeddings
		}

		results = append(results, entities.SearchResult{
			Document: doc,
			Score:    cosineSimilarity(embedding, doc.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// Delete removes one document.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table), id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// Count returns the number of stored documents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Package vectorstore persists one similarity-searchable index per document
// identifier on local disk, backed by SQLite. The identifier doubles as the
// storage location: <data_dir>/<id>.db.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"pdf-chat-go/internal/apperr"
)

// Store locates per-document indexes under a data directory.
type Store struct {
	dir string
}

// NewStore creates the data directory if needed and returns a Store.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "./data/indexes"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Build persists the (chunk, vector) pairs as the index for docID, replacing
// any existing index for that identifier. The index is written to a temporary
// file and renamed into place, so a failed build never leaves partial state
// behind a successful-looking file.
func (s *Store) Build(ctx context.Context, docID string, chunks []string, vectors [][]float32) error {
	if len(chunks) == 0 {
		return errors.New("no chunks to index")
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}

	path, err := s.indexPath(docID)
	if err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	defer os.Remove(tmpPath)

	if err := s.writeIndex(ctx, tmpPath, chunks, vectors); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("installing index: %w", err)
	}
	return nil
}

func (s *Store) writeIndex(ctx context.Context, path string, chunks []string, vectors [][]float32) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening index database: %w", err)
	}
	defer db.Close()

	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		chunk_id INTEGER PRIMARY KEY,
		text_content TEXT NOT NULL,
		embedding BLOB NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (chunk_id, text_content, embedding)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		embedding, err := json.Marshal(vectors[i])
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, i, chunk, embedding); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Search loads the index for docID and returns the texts of the topK chunks
// most similar to queryVector by cosine similarity, best first. It never
// mutates the index.
func (s *Store) Search(ctx context.Context, docID string, queryVector []float32, topK int) ([]string, error) {
	path, err := s.indexPath(docID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, apperr.Wrap(apperr.KindDocumentNotIndexed,
			fmt.Sprintf("no index found for document %s", docID), err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT text_content, embedding FROM chunks ORDER BY chunk_id`)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	defer rows.Close()

	type scored struct {
		text  string
		score float64
	}
	var entries []scored
	for rows.Next() {
		var text string
		var blob []byte
		if err := rows.Scan(&text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		var vector []float32
		if err := json.Unmarshal(blob, &vector); err != nil {
			return nil, fmt.Errorf("decoding embedding: %w", err)
		}
		entries = append(entries, scored{text: text, score: cosineSimilarity(queryVector, vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	if len(entries) == 0 {
		return nil, apperr.New(apperr.KindDocumentNotIndexed,
			fmt.Sprintf("index for document %s is empty", docID))
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].score > entries[j].score })

	if topK <= 0 {
		topK = 4
	}
	if topK > len(entries) {
		topK = len(entries)
	}
	texts := make([]string, 0, topK)
	for _, e := range entries[:topK] {
		texts = append(texts, e.text)
	}
	return texts, nil
}

// Exists reports whether a persisted index is present for docID.
func (s *Store) Exists(docID string) bool {
	path, err := s.indexPath(docID)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(path)
	return statErr == nil
}

// indexPath maps an identifier to its on-disk location. Identifiers are
// opaque tokens; anything that could escape the data directory is rejected.
func (s *Store) indexPath(docID string) (string, error) {
	if docID == "" || strings.ContainsAny(docID, `/\`) || strings.Contains(docID, "..") {
		return "", apperr.New(apperr.KindDocumentNotIndexed,
			fmt.Sprintf("invalid document identifier %q", docID))
	}
	return filepath.Join(s.dir, docID+".db"), nil
}

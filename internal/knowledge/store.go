// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// Store is a SQLite-backed Source. Lookups are exact-title primary key reads.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the knowledge database at dbPath and creates the
// schema if it does not exist.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS blocks (
		title TEXT PRIMARY KEY,
		summary TEXT NOT NULL DEFAULT '',
		methodology TEXT NOT NULL,
		findings TEXT NOT NULL,
		implications TEXT NOT NULL,
		content_hash TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Lookup returns the block stored under exactly title.
func (s *Store) Lookup(ctx context.Context, title string) (types.KnowledgeBlock, bool, error) {
	var (
		b        types.KnowledgeBlock
		findings string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT title, summary, methodology, findings, implications FROM blocks WHERE title = ?`, title,
	).Scan(&b.Title, &b.Summary, &b.Methodology, &findings, &b.Implications)
	if errors.Is(err, sql.ErrNoRows) {
		return types.KnowledgeBlock{}, false, nil
	}
	if err != nil {
		return types.KnowledgeBlock{}, false, fmt.Errorf("looking up %q: %w", title, err)
	}
	if err := json.Unmarshal([]byte(findings), &b.Findings); err != nil {
		return types.KnowledgeBlock{}, false, fmt.Errorf("decoding findings for %q: %w", title, err)
	}
	return b, true, nil
}

// Titles returns every stored title in sorted order.
func (s *Store) Titles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM blocks ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("listing titles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Blocks returns every stored block ordered by title.
func (s *Store) Blocks(ctx context.Context) ([]types.KnowledgeBlock, error) {
	titles, err := s.Titles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.KnowledgeBlock, 0, len(titles))
	for _, t := range titles {
		b, _, err := s.Lookup(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// IngestSummary holds counts from one Ingest run.
type IngestSummary struct {
	Inserted  int
	Updated   int
	Unchanged int
}

// Total returns the number of blocks processed.
func (s IngestSummary) Total() int {
	return s.Inserted + s.Updated + s.Unchanged
}

// Ingest upserts blocks in one transaction. A block whose content hash
// matches the stored row is left alone. Progress lines go to w.
func (s *Store) Ingest(ctx context.Context, blocks []types.KnowledgeBlock, w io.Writer) (IngestSummary, error) {
	if _, err := NewTable(blocks); err != nil {
		return IngestSummary{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var summary IngestSummary
	for _, b := range blocks {
		select {
		case <-ctx.Done():
			return IngestSummary{}, ctx.Err()
		default:
		}

		findingsJSON, err := json.Marshal(b.Findings)
		if err != nil {
			return IngestSummary{}, fmt.Errorf("encoding findings for %q: %w", b.Title, err)
		}
		hash := blockHash(b, findingsJSON)

		var stored string
		err = tx.QueryRowContext(ctx, `SELECT content_hash FROM blocks WHERE title = ?`, b.Title).Scan(&stored)
		exists := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return IngestSummary{}, fmt.Errorf("checking %q: %w", b.Title, err)
		}
		if exists && stored == hash {
			fmt.Fprintf(w, "unchanged %s\n", b.Title)
			summary.Unchanged++
			continue
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO blocks (title, summary, methodology, findings, implications, content_hash)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(title) DO UPDATE SET
				summary=excluded.summary, methodology=excluded.methodology,
				findings=excluded.findings, implications=excluded.implications,
				content_hash=excluded.content_hash`,
			b.Title, b.Summary, b.Methodology, string(findingsJSON), b.Implications, hash,
		)
		if err != nil {
			return IngestSummary{}, fmt.Errorf("upserting %q: %w", b.Title, err)
		}

		if exists {
			fmt.Fprintf(w, "updated   %s\n", b.Title)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "inserted  %s\n", b.Title)
			summary.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return IngestSummary{}, fmt.Errorf("committing: %w", err)
	}

	fmt.Fprintf(w, "\ninserted: %d, updated: %d, unchanged: %d\n",
		summary.Inserted, summary.Updated, summary.Unchanged)
	return summary, nil
}

func blockHash(b types.KnowledgeBlock, findingsJSON []byte) string {
	h := sha256.New()
	for _, part := range []string{b.Summary, b.Methodology, string(findingsJSON), b.Implications} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

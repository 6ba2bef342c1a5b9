// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive maintains a SQLite index over every Day File so past
// papers can be looked up and exported by text, category, author or date.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/daily-arxiv/internal/daystore"
	"github.com/pdiddy/daily-arxiv/pkg/types"
)

// DaySource enumerates and reads Day Files.
type DaySource interface {
	Dates() ([]time.Time, error)
	Path(date time.Time) string
	Load(date time.Time) (daystore.Day, error)
}

// Index is the archive SQLite database.
type Index struct {
	db         *sql.DB
	path       string
	maxResults int
}

// Open opens or creates the archive database at cfg.IndexPath and creates
// the schema if it does not exist.
func Open(cfg types.ArchiveConfig) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.IndexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.IndexPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	idx := &Index{db: db, path: cfg.IndexPath, maxResults: maxResults}
	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return idx, nil
}

// Close releases the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

func (x *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			summary TEXT,
			authors TEXT,
			categories TEXT,
			comment TEXT,
			pdf TEXT,
			abs TEXT,
			first_seen TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_first_seen ON papers(first_seen)`,
		`CREATE TABLE IF NOT EXISTS indexed_days (
			date TEXT PRIMARY KEY,
			file_size INTEGER,
			file_mod_time TEXT,
			records INTEGER
		)`,
	}
	for _, stmt := range statements {
		if _, err := x.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Skipped int
	Failed  int
	Papers  int
}

// Ingest indexes every Day File in src. Days whose file size and
// modification time match the previous run are skipped. A paper keeps the
// earliest date it was seen; its other fields take the latest indexed values.
func (x *Index) Ingest(ctx context.Context, src DaySource, w io.Writer) (IngestSummary, error) {
	dates, err := src.Dates()
	if err != nil {
		return IngestSummary{}, fmt.Errorf("listing days: %w", err)
	}

	var summary IngestSummary
	for _, date := range dates {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		day := date.Format(daystore.DateLayout)
		info, err := os.Stat(src.Path(date))
		if err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", day, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedSize int64
		var storedMod string
		err = x.db.QueryRowContext(ctx,
			`SELECT file_size, file_mod_time FROM indexed_days WHERE date = ?`, day,
		).Scan(&storedSize, &storedMod)
		if err == nil && storedSize == info.Size() && storedMod == modTime {
			fmt.Fprintf(w, "skipped  %s\n", day)
			summary.Skipped++
			continue
		}

		loaded, err := src.Load(date)
		if err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", day, err)
			summary.Failed++
			continue
		}

		if err := x.ingestDay(ctx, day, loaded.Records, info.Size(), modTime); err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", day, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "indexed  %s (%d papers)\n", day, len(loaded.Records))
		summary.Indexed++
		summary.Papers += len(loaded.Records)
	}

	fmt.Fprintf(w, "\nindexed: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Skipped, summary.Failed)
	return summary, nil
}

func (x *Index) ingestDay(ctx context.Context, day string, records []types.Record, size int64, modTime string) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (id, title, summary, authors, categories, comment, pdf, abs, first_seen)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, summary=excluded.summary, authors=excluded.authors,
			categories=excluded.categories, comment=excluded.comment,
			pdf=excluded.pdf, abs=excluded.abs,
			first_seen=MIN(papers.first_seen, excluded.first_seen)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.ID == "" {
			continue
		}
		authorsJSON, _ := json.Marshal(r.Authors)
		categoriesJSON, _ := json.Marshal(r.Categories)
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Title, r.Summary, string(authorsJSON), string(categoriesJSON),
			r.Comment, r.PDF, r.Abs, day,
		); err != nil {
			return fmt.Errorf("inserting paper %s: %w", r.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexed_days (date, file_size, file_mod_time, records) VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			file_size=excluded.file_size, file_mod_time=excluded.file_mod_time, records=excluded.records`,
		day, size, modTime, len(records),
	)
	if err != nil {
		return fmt.Errorf("updating indexed days: %w", err)
	}

	return tx.Commit()
}

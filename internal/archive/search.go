// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/daily-arxiv/pkg/types"
)

// Query holds archive search filters. Empty fields do not filter.
type Query struct {
	// Text matches title or summary, case-insensitive.
	Text string
	// Category matches one category code exactly (e.g. "cs.CV").
	Category string
	// Author matches part of any author name, case-insensitive.
	Author string
	// Date matches the first-seen date (YYYY-MM-DD).
	Date string
	// Limit caps the result count. Zero uses the index default; negative means no limit.
	Limit int
}

// Entry is an archived paper with the date it was first collected.
type Entry struct {
	types.Record `yaml:",inline"`
	FirstSeen    string `json:"first_seen" yaml:"first_seen"`
}

// Search returns archived papers matching q, newest first.
func (x *Index) Search(ctx context.Context, q Query) ([]Entry, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, title, summary, authors, categories, comment, pdf, abs, first_seen
		FROM papers WHERE 1=1`)

	if q.Text != "" {
		pat := likePattern(q.Text)
		qb.WriteString(` AND (lower(title) LIKE ? ESCAPE '\' OR lower(summary) LIKE ? ESCAPE '\')`)
		args = append(args, pat, pat)
	}
	if q.Category != "" {
		cat, _ := json.Marshal(q.Category)
		qb.WriteString(` AND categories LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(string(cat))+"%")
	}
	if q.Author != "" {
		qb.WriteString(` AND lower(authors) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q.Author))
	}
	if q.Date != "" {
		qb.WriteString(` AND first_seen = ?`)
		args = append(args, q.Date)
	}

	qb.WriteString(` ORDER BY first_seen DESC, id`)

	limit := q.Limit
	if limit == 0 {
		limit = x.maxResults
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := x.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                 Entry
			authors, cats     string
			title, summary    string
			comment, pdf, abs string
		)
		if err := rows.Scan(&e.ID, &title, &summary, &authors, &cats, &comment, &pdf, &abs, &e.FirstSeen); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Title, e.Summary, e.Comment, e.PDF, e.Abs = title, summary, comment, pdf, abs
		_ = json.Unmarshal([]byte(authors), &e.Authors)
		_ = json.Unmarshal([]byte(cats), &e.Categories)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// likePattern returns a lowercased substring LIKE pattern for s.
func likePattern(s string) string {
	return "%" + escapeLike(strings.ToLower(s)) + "%"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

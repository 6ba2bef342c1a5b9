// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords implements the relevance predicate shared by the crawl
// stage and the deduplication stage.
package keywords

import (
	"strings"

	"github.com/pdiddy/daily-arxiv/pkg/types"
)

// Matcher decides whether a record is relevant. The crawl and dedup stages
// both receive one and must not implement their own check.
type Matcher interface {
	Matches(r types.Record) bool
}

// Filter is a case-insensitive substring Matcher over title and summary.
// The zero value matches every record.
type Filter struct {
	keywords []string
}

// New returns a Filter for list. Entries are trimmed and lowercased;
// empty entries are dropped.
func New(list []string) Filter {
	var kws []string
	for _, k := range list {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kws = append(kws, k)
		}
	}
	return Filter{keywords: kws}
}

// Enabled reports whether any keyword is configured.
func (f Filter) Enabled() bool { return len(f.keywords) > 0 }

// Keywords returns a copy of the normalized keyword list.
func (f Filter) Keywords() []string {
	return append([]string(nil), f.keywords...)
}

// Matches reports whether any keyword occurs in the record's title or
// summary. With no keywords every record matches. Missing fields are
// treated as empty text.
func (f Filter) Matches(r types.Record) bool {
	if len(f.keywords) == 0 {
		return true
	}
	title := strings.ToLower(r.Title)
	summary := strings.ToLower(r.Summary)
	for _, kw := range f.keywords {
		if strings.Contains(title, kw) || strings.Contains(summary, kw) {
			return true
		}
	}
	return false
}

// Parse splits a comma-separated keyword setting into a normalized list.
func Parse(raw string) []string {
	return New(SplitList(raw)).keywords
}

// SplitList splits a comma-separated setting, trimming whitespace and
// dropping empty entries. Case is preserved.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/daily-arxiv/internal/httputil"
	"github.com/pdiddy/daily-arxiv/internal/keywords"
	"github.com/pdiddy/daily-arxiv/pkg/types"
)

// arxivAPIBase is the arXiv export API endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

var (
	// ErrRejected marks a record dropped by the keyword filter once its
	// full metadata is known. It is a drop, not a failure.
	ErrRejected = errors.New("rejected by keyword filter")

	// ErrNotFound is returned when the API has no entry for an id.
	ErrNotFound = errors.New("no arXiv entry")
)

// Enricher completes a listing record with its full metadata.
type Enricher interface {
	Enrich(ctx context.Context, rec types.Record) (types.Record, error)
}

// ArxivEnricher looks records up in the arXiv export API.
type ArxivEnricher struct {
	Client  *http.Client
	Config  types.HTTPConfig
	Limiter *rate.Limiter
}

// Enrich fetches title, summary, authors, categories and comment for rec.ID
// and fills the derived PDF and abstract links.
func (e *ArxivEnricher) Enrich(ctx context.Context, rec types.Record) (types.Record, error) {
	apiURL := fmt.Sprintf("%s?id_list=%s&max_results=1", arxivAPIBase, url.QueryEscape(rec.ID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return rec, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, e.Client, req, e.Config.MaxRetries, e.Limiter)
	if err != nil {
		return rec, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rec, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return rec, fmt.Errorf("parsing arXiv response: %w", err)
	}
	if len(feed.Entries) == 0 || strings.Contains(feed.Entries[0].ID, "/api/errors") {
		return rec, fmt.Errorf("%w for %s", ErrNotFound, rec.ID)
	}

	entry := feed.Entries[0]
	out := rec.WithLinks()
	out.Title = strings.Join(strings.Fields(entry.Title), " ")
	out.Summary = strings.TrimSpace(entry.Summary)
	out.Comment = strings.TrimSpace(entry.Comment)
	out.Authors = nil
	for _, a := range entry.Authors {
		out.Authors = append(out.Authors, strings.TrimSpace(a.Name))
	}
	if len(entry.Categories) > 0 {
		out.Categories = nil
		for _, c := range entry.Categories {
			out.Categories = append(out.Categories, c.Term)
		}
	}
	return out, nil
}

// Screen wraps e so that a record failing m after enrichment is returned
// with ErrRejected. This is the same predicate the dedup stage applies.
func Screen(e Enricher, m keywords.Matcher) Enricher {
	return screened{next: e, m: m}
}

type screened struct {
	next Enricher
	m    keywords.Matcher
}

func (s screened) Enrich(ctx context.Context, rec types.Record) (types.Record, error) {
	out, err := s.next.Enrich(ctx, rec)
	if err != nil {
		return out, err
	}
	if s.m != nil && !s.m.Matches(out) {
		return out, fmt.Errorf("%s %q: %w", out.ID, out.Title, ErrRejected)
	}
	return out, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Comment    string          `xml:"http://arxiv.org/schemas/atom comment"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/pdiddy/daily-arxiv/internal/httputil"
	"github.com/pdiddy/daily-arxiv/internal/keywords"
	"github.com/pdiddy/daily-arxiv/pkg/types"
)

// listBase is the arXiv listing root. Declared as a var so tests can
// substitute an httptest server.
var listBase = "https://arxiv.org/list/"

// categoryCode pulls "cs.CV" out of "Computer Vision and Pattern Recognition (cs.CV)".
var categoryCode = regexp.MustCompile(`\(([^)]+)\)`)

// Lister returns the candidate records announced for a category.
type Lister interface {
	List(ctx context.Context, category string) ([]types.Record, error)
}

// ArxivLister reads the "new" listing page of an arXiv category.
type ArxivLister struct {
	Client  *http.Client
	Config  types.AcquisitionConfig
	Matcher keywords.Matcher
	Limiter *rate.Limiter
	Log     io.Writer
}

// List fetches and parses the listing page for category.
func (l *ArxivLister) List(ctx context.Context, category string) ([]types.Record, error) {
	url := listBase + category + "/new"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", l.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, l.Client, req, l.Config.MaxRetries, l.Limiter)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing %s: HTTP %d", category, resp.StatusCode)
	}
	return ParseListing(resp.Body, l.Config.Categories, l.Matcher, l.Log)
}

// ParseListing extracts candidate records from an arXiv "new" listing page.
//
// Items at or past the last section anchor (replacements) are ignored. A
// record is kept when its categories intersect targets; a record whose
// subjects cannot be read is kept with a warning. When m is non-nil and a
// title is present, records whose title fails m are dropped here, before
// enrichment.
func ParseListing(r io.Reader, targets []string, m keywords.Matcher, w io.Writer) ([]types.Record, error) {
	if w == nil {
		w = io.Discard
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing listing page: %w", err)
	}

	want := make(map[string]bool, len(targets))
	for _, t := range targets {
		want[t] = true
	}

	// Section anchors: "#item1" (new), "#item120" (cross-lists), "#item170" (replacements).
	cutoff := -1
	doc.Find("div#dlpage ul li a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if n, ok := itemNumber(href); ok {
			cutoff = n
		}
	})

	var records []types.Record
	doc.Find("dl dt").Each(func(_ int, dt *goquery.Selection) {
		name, _ := dt.Find("a[name^='item']").Attr("name")
		n, ok := itemNumber(name)
		if !ok {
			return
		}
		if cutoff >= 0 && n >= cutoff {
			return
		}

		href, ok := dt.Find("a[title='Abstract']").Attr("href")
		if !ok {
			return
		}
		id := href[strings.LastIndex(href, "/")+1:]
		if id == "" {
			return
		}

		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}

		title := fieldText(dd.Find(".list-title").First())
		if m != nil && title != "" && !m.Matches(types.Record{ID: id, Title: title}) {
			fmt.Fprintf(w, "skipped %s: title %q does not match keywords\n", id, title)
			return
		}

		subjects := fieldText(dd.Find(".list-subjects").First())
		if subjects == "" {
			fmt.Fprintf(w, "warning: could not read categories for %s, including anyway\n", id)
			records = append(records, types.Record{ID: id, Title: title, Categories: []string{}})
			return
		}

		var cats []string
		hit := false
		for _, match := range categoryCode.FindAllStringSubmatch(subjects, -1) {
			cats = append(cats, match[1])
			if want[match[1]] {
				hit = true
			}
		}
		if !hit {
			fmt.Fprintf(w, "skipped %s: categories %v not in targets\n", id, cats)
			return
		}
		records = append(records, types.Record{ID: id, Title: title, Categories: cats})
	})
	return records, nil
}

// fieldText returns the text of a listing field without its "Title:" or
// "Subjects:" descriptor, with whitespace collapsed.
func fieldText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	c := s.Clone()
	c.Find(".descriptor").Remove()
	return strings.Join(strings.Fields(c.Text()), " ")
}

// itemNumber parses the N out of "item N" anchors, "#itemN" fragments included.
func itemNumber(s string) (int, bool) {
	idx := strings.LastIndex(s, "item")
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[idx+len("item"):])
	if err != nil {
		return 0, false
	}
	return n, true
}

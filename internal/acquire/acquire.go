// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire collects the day's new arXiv papers: it reads category
// listing pages, enriches each candidate through the export API, drops
// candidates that fail the keyword filter, and appends the rest to the
// day's Day File.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/daily-arxiv/pkg/types"
)

const defaultConcurrency = 4

// Appender receives the surviving records of a crawl.
type Appender interface {
	Append(date time.Time, records []types.Record) error
}

// BatchResult holds the outcome of a crawl.
type BatchResult struct {
	Listed   int            `yaml:"listed"`
	Enriched int            `yaml:"enriched"`
	Rejected int            `yaml:"rejected"`
	Failed   int            `yaml:"failed"`
	Records  []types.Record `yaml:"-"`
}

// HasFailures reports whether any enrichment failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Pipeline wires the crawl stages together. Enricher should already be
// wrapped with Screen so keyword misses come back as ErrRejected.
type Pipeline struct {
	Lister   Lister
	Enricher Enricher
	Store    Appender
	Config   types.AcquisitionConfig
	Log      io.Writer
}

// Run lists every configured category, enriches the candidates with
// bounded concurrency, and appends survivors to the Day File for date in
// listing order. Individual listing or enrichment failures are counted and
// logged; Run fails only when no category could be listed or the append
// fails.
func (p *Pipeline) Run(ctx context.Context, date time.Time) (BatchResult, error) {
	w := p.Log
	if w == nil {
		w = io.Discard
	}

	var result BatchResult
	var candidates []types.Record
	seen := make(map[string]bool)
	listErrs := 0
	for _, cat := range p.Config.Categories {
		recs, err := p.Lister.List(ctx, cat)
		if err != nil {
			fmt.Fprintf(w, "warning: %v\n", err)
			listErrs++
			continue
		}
		fmt.Fprintf(w, "%s: %d candidate(s)\n", cat, len(recs))
		for _, r := range recs {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			candidates = append(candidates, r)
		}
	}
	if len(p.Config.Categories) > 0 && listErrs == len(p.Config.Categories) {
		return result, fmt.Errorf("all %d category listing(s) failed", listErrs)
	}
	result.Listed = len(candidates)

	limit := p.Config.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	type outcome struct {
		rec types.Record
		err error
	}
	outcomes := make([]outcome, len(candidates))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			rec, err := p.Enricher.Enrich(ctx, c)
			outcomes[i] = outcome{rec: rec, err: err}
			return nil
		})
	}
	g.Wait()

	for _, o := range outcomes {
		switch {
		case o.err == nil:
			result.Enriched++
			result.Records = append(result.Records, o.rec)
		case errors.Is(o.err, ErrRejected):
			result.Rejected++
			fmt.Fprintf(w, "dropped: %v\n", o.err)
		default:
			result.Failed++
			fmt.Fprintf(w, "failed:  %s (%v)\n", o.rec.ID, o.err)
		}
	}

	if err := p.Store.Append(date, result.Records); err != nil {
		return result, fmt.Errorf("appending records: %w", err)
	}

	fmt.Fprintf(w, "\nCrawl summary: %d listed, %d kept, %d rejected, %d failed\n",
		result.Listed, result.Enriched, result.Rejected, result.Failed)
	return result, nil
}

// summaryFile is the on-disk form of a crawl summary.
type summaryFile struct {
	Date      string      `yaml:"date"`
	Result    BatchResult `yaml:"result"`
	IDs       []string    `yaml:"ids"`
	Timestamp time.Time   `yaml:"timestamp"`
}

// WriteSummary saves a crawl summary as YAML.
func WriteSummary(path string, date time.Time, result BatchResult) error {
	sf := summaryFile{
		Date:      date.Format("2006-01-02"),
		Result:    result,
		Timestamp: time.Now(),
	}
	for _, r := range result.Records {
		sf.IDs = append(sf.IDs, r.ID)
	}

	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

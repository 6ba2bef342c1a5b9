// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/daily-arxiv/internal/daystore"
	"github.com/pdiddy/daily-arxiv/internal/keywords"
	"github.com/pdiddy/daily-arxiv/pkg/types"
)

var crawlDate = time.Date(2026, 4, 21, 5, 0, 0, 0, time.Local)

type stubLister map[string][]types.Record

func (s stubLister) List(_ context.Context, category string) ([]types.Record, error) {
	recs, ok := s[category]
	if !ok {
		return nil, errors.New("listing " + category + ": HTTP 503")
	}
	return recs, nil
}

type failingAppender struct{}

func (failingAppender) Append(time.Time, []types.Record) error { return errors.New("disk full") }

func TestPipelineRun(t *testing.T) {
	store := daystore.New(t.TempDir(), nil)
	lister := stubLister{
		"cs.CV": {{ID: "A"}, {ID: "B"}, {ID: "C"}},
		"cs.LG": {{ID: "C"}, {ID: "D"}},
	}
	enricher := stubEnricher{
		"A": {ID: "A", Title: "NeRF in the wild"},
		"B": {ID: "B", Title: "Segmentation"},
		"D": {ID: "D", Summary: "a nerf variant"},
	}
	var log bytes.Buffer

	p := &Pipeline{
		Lister:   lister,
		Enricher: Screen(enricher, keywords.New([]string{"nerf"})),
		Store:    store,
		Config: types.AcquisitionConfig{
			Categories:  []string{"cs.CV", "cs.LG", "cs.XX"},
			Concurrency: 2,
		},
		Log: &log,
	}
	result, err := p.Run(context.Background(), crawlDate)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Listed)
	assert.Equal(t, 2, result.Enriched)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, 1, result.Failed) // C has no API entry
	assert.True(t, result.HasFailures())
	assert.Contains(t, log.String(), "warning: listing cs.XX")

	day, err := store.Load(crawlDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D"}, ids(day.Records))
}

func TestPipelineRun_AllListingsFail(t *testing.T) {
	store := daystore.New(t.TempDir(), nil)
	p := &Pipeline{
		Lister:   stubLister{},
		Enricher: stubEnricher{},
		Store:    store,
		Config:   types.AcquisitionConfig{Categories: []string{"cs.CV"}},
	}
	_, err := p.Run(context.Background(), crawlDate)
	assert.ErrorContains(t, err, "all 1 category listing(s) failed")
	assert.False(t, store.Exists(crawlDate))
}

func TestPipelineRun_NothingKeptWritesNoFile(t *testing.T) {
	store := daystore.New(t.TempDir(), nil)
	p := &Pipeline{
		Lister:   stubLister{"cs.CV": {{ID: "B"}}},
		Enricher: Screen(stubEnricher{"B": {ID: "B", Title: "x"}}, keywords.New([]string{"nerf"})),
		Store:    store,
		Config:   types.AcquisitionConfig{Categories: []string{"cs.CV"}},
	}
	result, err := p.Run(context.Background(), crawlDate)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rejected)
	assert.False(t, store.Exists(crawlDate))
}

func TestPipelineRun_AppendFailure(t *testing.T) {
	p := &Pipeline{
		Lister:   stubLister{"cs.CV": {{ID: "A"}}},
		Enricher: stubEnricher{"A": {ID: "A"}},
		Store:    failingAppender{},
		Config:   types.AcquisitionConfig{Categories: []string{"cs.CV"}},
	}
	_, err := p.Run(context.Background(), crawlDate)
	assert.ErrorContains(t, err, "disk full")
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.yaml")
	result := BatchResult{Listed: 3, Enriched: 2, Rejected: 1, Records: []types.Record{{ID: "A"}, {ID: "D"}}}
	require.NoError(t, WriteSummary(path, crawlDate, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var sf summaryFile
	require.NoError(t, yaml.Unmarshal(data, &sf))
	assert.Equal(t, "2026-04-21", sf.Date)
	assert.Equal(t, 2, sf.Result.Enriched)
	assert.Equal(t, []string{"A", "D"}, sf.IDs)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes the papers matching q to path as YAML. A zero Limit
// exports every match.
func (x *Index) ExportYAML(ctx context.Context, q Query, path string) (int, error) {
	entries, err := x.exportEntries(ctx, q)
	if err != nil {
		return 0, err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	return len(entries), os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the papers matching q to path as indented JSON. A zero
// Limit exports every match.
func (x *Index) ExportJSON(ctx context.Context, q Query, path string) (int, error) {
	entries, err := x.exportEntries(ctx, q)
	if err != nil {
		return 0, err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}
	return len(entries), os.WriteFile(path, data, 0o644)
}

func (x *Index) exportEntries(ctx context.Context, q Query) ([]Entry, error) {
	if q.Limit == 0 {
		q.Limit = -1
	}
	entries, err := x.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

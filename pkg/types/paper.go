// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the daily-arxiv pipeline.
// Implements: Record (one paper observation in a Day File);
//
//	Outcome (the four-valued result of a deduplication run);
//	Config (typed configuration shared by every stage).
package types

import "encoding/json"

const (
	arxivPDFBase = "https://arxiv.org/pdf/"
	arxivAbsBase = "https://arxiv.org/abs/"
)

// Record is one paper observation as stored in a Day File. ID is the only
// deduplication key: two records with the same ID on different days are the
// same paper regardless of content drift.
type Record struct {
	// ID is the arXiv identifier (e.g. "2501.01234").
	ID string `json:"id" yaml:"id"`

	// Categories lists the arXiv category codes (e.g. "cs.CV").
	Categories []string `json:"categories" yaml:"categories"`

	// PDF and Abs are derived from ID by Links.
	PDF string `json:"pdf,omitempty" yaml:"pdf,omitempty"`
	Abs string `json:"abs,omitempty" yaml:"abs,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Title is the paper title. Empty until enrichment when only the
	// listing page has been read.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Comment is the free-text author comment (page counts, venue).
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// Summary is the paper abstract.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Raw holds the exact Day File line the record was decoded from. When
	// set, it is written back unchanged so fields added by later stages
	// survive a rewrite.
	Raw json.RawMessage `json:"-" yaml:"-"`
}

// Links returns the PDF and abstract page URLs for an arXiv identifier.
func Links(id string) (pdf, abs string) {
	return arxivPDFBase + id, arxivAbsBase + id
}

// WithLinks returns a copy of r with PDF and Abs filled from its ID.
func (r Record) WithLinks() Record {
	r.PDF, r.Abs = Links(r.ID)
	return r
}

// Outcome classifies a single deduplication run. It is produced exactly
// once per run and never persisted.
type Outcome string

const (
	OutcomeNewContent   Outcome = "has_new_content"
	OutcomeNoNewContent Outcome = "no_new_content"
	OutcomeNoData       Outcome = "no_data"
	OutcomeError        Outcome = "error"
)

// String implements fmt.Stringer.
func (o Outcome) String() string { return string(o) }

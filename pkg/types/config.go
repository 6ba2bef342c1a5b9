package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "daily-arxiv/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AcquisitionConfig holds settings for the crawl stage.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Categories lists the arXiv categories whose "new" listing is read
	// (from CATEGORIES, default cs.CV).
	Categories []string `json:"categories" yaml:"categories"`

	// Concurrency bounds the number of enrichment requests in flight (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// RequestInterval is the minimum spacing between arXiv API calls (default 3s).
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval"`
}

// DedupConfig holds settings for the deduplication stage.
type DedupConfig struct {
	// HistoryDays is the number of days preceding today whose ids form
	// the deduplication window (default 7).
	HistoryDays int `json:"history_days" yaml:"history_days"`
}

// ArchiveConfig holds settings for the SQLite archive index.
type ArchiveConfig struct {
	// IndexPath is the SQLite database file (default data/index/archive.db).
	IndexPath string `json:"index_path" yaml:"index_path"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all stage configurations. It is built once at process
// start and passed explicitly to every stage.
type Config struct {
	// Keywords is the normalized relevance keyword list (from KEYWORDS).
	// Empty disables keyword filtering.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// DataDir holds one Day File per date (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	Dedup       DedupConfig       `json:"dedup" yaml:"dedup"`
	Archive     ArchiveConfig     `json:"archive" yaml:"archive"`
}

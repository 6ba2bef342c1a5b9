// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/daily-arxiv/internal/keywords"
	"github.com/pdiddy/daily-arxiv/pkg/types"
)

const defaultUserAgent = "daily-arxiv/0.1 (+https://github.com/pdiddy/daily-arxiv)"

// configureViper registers defaults, flag bindings and environment bindings.
// KEYWORDS and CATEGORIES are read without prefix; every other key also
// accepts DAILY_ARXIV_<KEY> with dots replaced by underscores.
func configureViper() {
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("categories", "cs.CV")
	viper.SetDefault("dedup.history_days", 7)
	viper.SetDefault("acquisition.timeout", 60*time.Second)
	viper.SetDefault("acquisition.max_retries", 5)
	viper.SetDefault("acquisition.concurrency", 4)
	viper.SetDefault("acquisition.request_interval", 3*time.Second)
	viper.SetDefault("archive.max_results", 20)

	viper.SetEnvPrefix("DAILY_ARXIV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("keywords", "KEYWORDS")
	viper.BindEnv("categories", "CATEGORIES")

	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("keywords", rootCmd.PersistentFlags().Lookup("keywords"))
	viper.BindPFlag("dedup.history_days", dedupCmd.Flags().Lookup("history-days"))
	viper.BindPFlag("archive.index_path", archiveCmd.PersistentFlags().Lookup("index"))
	viper.BindPFlag("archive.max_results", archiveCmd.PersistentFlags().Lookup("max-results"))
}

// loadConfig assembles the typed configuration once. Every stage receives
// its part of the result instead of reading the environment itself.
func loadConfig() types.Config {
	dataDir := viper.GetString("data_dir")
	if dataDir == "" {
		dataDir = "data"
	}

	indexPath := viper.GetString("archive.index_path")
	if indexPath == "" {
		indexPath = filepath.Join(dataDir, "index", "archive.db")
	}

	return types.Config{
		Keywords: keywords.Parse(listSetting("keywords")),
		DataDir:  dataDir,
		Acquisition: types.AcquisitionConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    viper.GetDuration("acquisition.timeout"),
				UserAgent:  defaultUserAgent,
				MaxRetries: viper.GetInt("acquisition.max_retries"),
			},
			Categories:      keywords.SplitList(listSetting("categories")),
			Concurrency:     viper.GetInt("acquisition.concurrency"),
			RequestInterval: viper.GetDuration("acquisition.request_interval"),
		},
		Dedup: types.DedupConfig{
			HistoryDays: viper.GetInt("dedup.history_days"),
		},
		Archive: types.ArchiveConfig{
			IndexPath:  indexPath,
			MaxResults: viper.GetInt("archive.max_results"),
		},
	}
}

// listSetting returns a list-valued setting as one comma-separated string,
// whether it came from the environment ("a,b") or a YAML list.
func listSetting(key string) string {
	switch v := viper.Get(key).(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return viper.GetString(key)
	}
}

// parseDate returns the local date for a YYYY-MM-DD flag value, or today
// when the value is empty.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return d, nil
}

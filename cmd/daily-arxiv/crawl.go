// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/pdiddy/daily-arxiv/internal/acquire"
	"github.com/pdiddy/daily-arxiv/internal/daystore"
	"github.com/pdiddy/daily-arxiv/internal/keywords"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Collect today's newly listed papers into the Day File",
	Long: `Crawl reads the "new" listing of every configured arXiv category, fetches
full metadata for each listed paper from the arXiv API, drops papers that do
not match the keywords, and appends the rest to data/YYYY-MM-DD.jsonl.

Requests are paced by acquisition.request_interval and retried on 429/503.
Individual paper failures are reported but do not fail the crawl.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().String("date", "", "day file to append to (YYYY-MM-DD, default today)")
	crawlCmd.Flags().String("summary", "", "write a YAML crawl summary to this path")
	crawlCmd.Flags().StringSlice("categories", nil, "arXiv categories to crawl (overrides CATEGORIES)")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	dateFlag, _ := cmd.Flags().GetString("date")
	date, err := parseDate(dateFlag)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	if cats, _ := cmd.Flags().GetStringSlice("categories"); len(cats) > 0 {
		cfg.Acquisition.Categories = cats
	}
	if len(cfg.Acquisition.Categories) == 0 {
		return fmt.Errorf("no categories configured: set CATEGORIES or --categories")
	}

	filter := keywords.New(cfg.Keywords)
	acq := cfg.Acquisition
	client := &http.Client{Timeout: acq.Timeout}
	limiter := rate.NewLimiter(rate.Every(acq.RequestInterval), 1)

	fmt.Fprintf(os.Stderr, "Crawling %v (keywords: %v)\n", acq.Categories, filter.Keywords())

	p := &acquire.Pipeline{
		Lister: &acquire.ArxivLister{
			Client:  client,
			Config:  acq,
			Matcher: filter,
			Limiter: limiter,
			Log:     os.Stderr,
		},
		Enricher: acquire.Screen(&acquire.ArxivEnricher{
			Client:  client,
			Config:  acq.HTTPConfig,
			Limiter: limiter,
		}, filter),
		Store:  daystore.New(cfg.DataDir, os.Stderr),
		Config: acq,
		Log:    os.Stderr,
	}

	result, err := p.Run(cmd.Context(), date)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("summary"); path != "" {
		if err := acquire.WriteSummary(path, date, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Summary written to %s\n", path)
	}
	return nil
}

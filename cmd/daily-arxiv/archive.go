// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/daily-arxiv/internal/archive"
	"github.com/pdiddy/daily-arxiv/internal/daystore"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the paper archive (store, search, export)",
	Long: `Archive keeps a local SQLite index of every paper that has appeared in a
Day File, so papers stay searchable after their day falls out of the
deduplication window.`,
}

// --- store subcommand ---

var archiveStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Index all Day Files into the archive",
	Long: `Store reads every data/YYYY-MM-DD.jsonl file and upserts its papers into
the archive. Unchanged days are skipped on subsequent runs.`,
	RunE: runArchiveStore,
}

func runArchiveStore(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	idx, err := archive.Open(cfg.Archive)
	if err != nil {
		return err
	}
	defer idx.Close()

	store := daystore.New(cfg.DataDir, os.Stderr)
	summary, err := idx.Ingest(cmd.Context(), store, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d day(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var archiveSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search archived papers by text, category, author, or date",
	RunE:  runArchiveSearch,
}

func runArchiveSearch(cmd *cobra.Command, args []string) error {
	q := queryFromFlags(cmd, args)
	if q == (archive.Query{Limit: q.Limit}) {
		return fmt.Errorf("query or filter required: provide text, --category, --author, or --date")
	}

	cfg := loadConfig()
	idx, err := archive.Open(cfg.Archive)
	if err != nil {
		return err
	}
	defer idx.Close()

	entries, err := idx.Search(cmd.Context(), q)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(entries, jsonOutput)
}

func formatSearchOutput(entries []archive.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-16s  %-60s  %s\n", "Seen", "ID", "Title", "Categories")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, e := range entries {
		title := e.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-10s  %-16s  %-60s  %s\n",
			e.FirstSeen, e.ID, title, strings.Join(e.Categories, " "))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(entries))
	return nil
}

// --- export subcommand ---

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the archive to YAML or JSON",
	Long: `Export writes the archive (or a filtered subset) to data/index/export.yaml
or export.json. Supports the same filters as search.`,
	RunE: runArchiveExport,
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	cfg := loadConfig()
	idx, err := archive.Open(cfg.Archive)
	if err != nil {
		return err
	}
	defer idx.Close()

	q := queryFromFlags(cmd, args)
	dir := filepath.Dir(cfg.Archive.IndexPath)

	var n int
	switch format {
	case "yaml", "":
		if out == "" {
			out = filepath.Join(dir, "export.yaml")
		}
		n, err = idx.ExportYAML(cmd.Context(), q, out)
	case "json":
		if out == "" {
			out = filepath.Join(dir, "export.json")
		}
		n, err = idx.ExportJSON(cmd.Context(), q, out)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d paper(s) to %s\n", n, out)
	return nil
}

// --- shared helpers ---

func queryFromFlags(cmd *cobra.Command, args []string) archive.Query {
	text, _ := cmd.Flags().GetString("query")
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}
	category, _ := cmd.Flags().GetString("category")
	author, _ := cmd.Flags().GetString("author")
	date, _ := cmd.Flags().GetString("date")
	limit, _ := cmd.Flags().GetInt("limit")

	return archive.Query{
		Text:     text,
		Category: category,
		Author:   author,
		Date:     date,
		Limit:    limit,
	}
}

func init() {
	archiveCmd.PersistentFlags().String("index", "", "archive database path (default: <data-dir>/index/archive.db)")
	archiveCmd.PersistentFlags().Int("max-results", 20, "default number of search results")

	for _, c := range []*cobra.Command{archiveSearchCmd, archiveExportCmd} {
		c.Flags().String("query", "", "text to match in title or summary")
		c.Flags().String("category", "", "filter by category code, e.g. cs.CV")
		c.Flags().String("author", "", "filter by author name")
		c.Flags().String("date", "", "filter by first-seen date (YYYY-MM-DD)")
	}
	archiveSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	archiveSearchCmd.Flags().Bool("json", false, "output results as JSON")

	archiveExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	archiveExportCmd.Flags().String("out", "", "output file (default: next to the index)")
	archiveExportCmd.Flags().Int("limit", 0, "maximum papers to export (0 = all)")

	archiveCmd.AddCommand(archiveStoreCmd)
	archiveCmd.AddCommand(archiveSearchCmd)
	archiveCmd.AddCommand(archiveExportCmd)

	rootCmd.AddCommand(archiveCmd)
}

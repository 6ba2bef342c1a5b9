// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/daily-arxiv/internal/daystore"
	"github.com/pdiddy/daily-arxiv/internal/dedup"
	"github.com/pdiddy/daily-arxiv/internal/keywords"
	"github.com/pdiddy/daily-arxiv/internal/signal"
	"github.com/pdiddy/daily-arxiv/pkg/types"
)

var dedupCmd = &cobra.Command{
	Use:     "dedup",
	Aliases: []string{"check"},
	Short:   "Remove papers seen in recent days and signal whether to continue",
	Long: `Dedup loads today's Day File, applies the keyword filter, and removes papers
whose id appears in any of the previous --history-days Day Files. The file is
rewritten with the survivors, or deleted when none survive.

Exit codes: 0 = new content, 1 = no new content or no data, 2 = error.
Diagnostics go to stderr.`,
	RunE: runDedup,
}

func init() {
	dedupCmd.Flags().Int("history-days", 7, "number of preceding days in the deduplication window")
	dedupCmd.Flags().String("date", "", "day to deduplicate (YYYY-MM-DD, default today)")

	rootCmd.AddCommand(dedupCmd)
}

func runDedup(cmd *cobra.Command, args []string) (err error) {
	exitCode = signal.Fail
	defer func() {
		if r := recover(); r != nil {
			exitCode = signal.Fail
			err = fmt.Errorf("dedup aborted: %v", r)
		}
	}()

	dateFlag, _ := cmd.Flags().GetString("date")
	date, err := parseDate(dateFlag)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	filter := keywords.New(cfg.Keywords)
	if filter.Enabled() {
		fmt.Fprintf(os.Stderr, "keyword filter: %v\n", filter.Keywords())
	} else {
		fmt.Fprintln(os.Stderr, "keywords not set, skipping keyword filter")
	}

	fmt.Fprintln(os.Stderr, "Performing deduplication check...")
	store := daystore.New(cfg.DataDir, os.Stderr)
	rep := dedup.NewEngine(store, filter, cfg.Dedup, os.Stderr).Run(date)

	printOutcome(rep.Outcome)
	exitCode = signal.ExitCode(rep.Outcome)
	return nil
}

func printOutcome(o types.Outcome) {
	c := color.New(color.FgRed, color.Bold)
	switch signal.ExitCode(o) {
	case signal.Continue:
		c = color.New(color.FgGreen, color.Bold)
	case signal.Stop:
		c = color.New(color.FgYellow)
	}
	c.Fprintln(os.Stderr, signal.Describe(o))
}

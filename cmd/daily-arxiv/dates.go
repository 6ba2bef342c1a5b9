// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/daily-arxiv/internal/daystore"
)

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the days that have a Day File",
	RunE:  runDates,
}

func init() {
	rootCmd.AddCommand(datesCmd)
}

func runDates(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store := daystore.New(cfg.DataDir, nil)

	dates, err := store.Dates()
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		fmt.Fprintf(os.Stderr, "No day files in %s\n", store.Dir())
		return nil
	}

	for _, d := range dates {
		day, err := store.Load(d)
		if err != nil {
			fmt.Fprintf(os.Stdout, "%s  %s\n", d.Format(daystore.DateLayout), err)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s  %4d paper(s)\n", d.Format(daystore.DateLayout), len(day.Records))
	}
	return nil
}

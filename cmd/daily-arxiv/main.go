// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the daily-arxiv CLI.
// Implements: crawl (acquisition), dedup (multi-day deduplication with
// workflow exit codes), dates, and archive (CLI surface).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/daily-arxiv/internal/signal"
)

// version is set at build time via ldflags.
var version = "dev"

// exitCode is the process status set by commands that report one
// (dedup). Any other failure exits 1, or 2 when dedup itself failed.
var exitCode int

// rootCmd is the base command for the daily-arxiv CLI.
var rootCmd = &cobra.Command{
	Use:   "daily-arxiv",
	Short: "Collect and deduplicate newly listed arXiv papers",
	Long: `daily-arxiv collects the papers newly listed in a set of arXiv categories,
enriches them with full metadata, filters them by keyword relevance, and keeps
a rolling multi-day deduplication window so only new papers are published.

Run "crawl" to append today's papers to data/YYYY-MM-DD.jsonl, then "dedup"
once per day. The dedup exit code tells the calling workflow whether to
continue (0), stop cleanly (1), or stop on error (2).`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./daily-arxiv.yaml or ~/.config/daily-arxiv/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory holding one YYYY-MM-DD.jsonl file per day")
	rootCmd.PersistentFlags().String("keywords", "", "comma-separated relevance keywords (overrides KEYWORDS)")
}

func initConfig() {
	// A missing .env is normal; variables already set in the environment win.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	configureViper()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("daily-arxiv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "daily-arxiv"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// execute runs the CLI with args and returns the process exit status.
func execute(args []string) int {
	exitCode = 0
	rootCmd.SetArgs(args)
	cmd, err := rootCmd.ExecuteC()
	if err != nil && exitCode == 0 {
		exitCode = 1
		if cmd == dedupCmd {
			// Flag errors stop dedup before it runs; the workflow must
			// still see a failure, not "no new content".
			exitCode = signal.Fail
		}
	}
	return exitCode
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

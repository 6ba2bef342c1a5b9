// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup removes papers already seen in a sliding window of previous
// days from today's Day File and classifies the run for the workflow.
//
// A run moves through Start, Loaded, Filtered, WindowBuilt, Classified and
// Persisted before returning exactly one Outcome. Re-running on the same
// day with no new acquisition is a no-op.
package dedup

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/daily-arxiv/internal/daystore"
	"github.com/pdiddy/daily-arxiv/internal/keywords"
	"github.com/pdiddy/daily-arxiv/pkg/types"
)

// DefaultHistoryDays is the window length used when the config leaves it unset.
const DefaultHistoryDays = 7

// DayStore is the Day File access the Engine needs.
type DayStore interface {
	Exists(date time.Time) bool
	Load(date time.Time) (daystore.Day, error)
	LoadIDs(date time.Time) (map[string]struct{}, error)
	Save(date time.Time, records []types.Record) error
	Delete(date time.Time) error
}

// Action records what the run did to today's Day File.
type Action string

const (
	ActionNone      Action = "none"
	ActionRewritten Action = "rewritten"
	ActionDeleted   Action = "deleted"
)

// Report describes one Engine run.
type Report struct {
	RunID   string
	Date    time.Time
	Outcome types.Outcome
	Action  Action

	// Loaded is the number of records parsed from today's file.
	Loaded int
	// Skipped is the number of unparseable lines in today's file.
	Skipped int
	// Matched is the number of records that passed the keyword filter.
	Matched int
	// HistorySize is the number of distinct ids in the window.
	HistorySize int
	// Duplicates lists the matched ids found in the window, sorted.
	Duplicates []string
	// Survivors is the number of records kept after deduplication.
	Survivors int

	// Err is the fault behind an error outcome.
	Err error
}

// Engine runs the daily deduplication pass.
type Engine struct {
	store       DayStore
	matcher     keywords.Matcher
	historyDays int
	w           io.Writer
}

// NewEngine returns an Engine. A nil matcher disables keyword filtering;
// a nil w discards diagnostics.
func NewEngine(store DayStore, matcher keywords.Matcher, cfg types.DedupConfig, w io.Writer) *Engine {
	if matcher == nil {
		matcher = keywords.Filter{}
	}
	if w == nil {
		w = io.Discard
	}
	days := cfg.HistoryDays
	if days <= 0 {
		days = DefaultHistoryDays
	}
	return &Engine{store: store, matcher: matcher, historyDays: days, w: w}
}

// Run performs one deduplication pass over the Day File for today. Every
// fault, including a panic, is absorbed into an OutcomeError report.
func (e *Engine) Run(today time.Time) (rep Report) {
	rep = Report{
		RunID:   uuid.NewString(),
		Date:    today,
		Outcome: types.OutcomeError,
		Action:  ActionNone,
	}
	fmt.Fprintf(e.w, "dedup run %s for %s\n", rep.RunID, today.Format(daystore.DateLayout))

	defer func() {
		if r := recover(); r != nil {
			rep.Outcome = types.OutcomeError
			rep.Err = fmt.Errorf("panic: %v", r)
			fmt.Fprintf(e.w, "error: deduplication aborted: %v\n", r)
		}
	}()

	rep.Outcome, rep.Err = e.run(today, &rep)
	if rep.Err != nil {
		fmt.Fprintf(e.w, "error: %v\n", rep.Err)
	}
	return rep
}

func (e *Engine) run(today time.Time, rep *Report) (types.Outcome, error) {
	// Start -> Loaded.
	if !e.store.Exists(today) {
		fmt.Fprintln(e.w, "today's data file does not exist")
		return types.OutcomeNoData, nil
	}
	// A file that exists but cannot be read is a fault, not missing data.
	day, err := e.store.Load(today)
	if err != nil {
		return types.OutcomeError, fmt.Errorf("loading today's data: %w", err)
	}
	rep.Loaded = len(day.Records)
	rep.Skipped = day.Skipped
	fmt.Fprintf(e.w, "today's papers: %d (%d unparseable line(s) skipped)\n", rep.Loaded, rep.Skipped)
	if rep.Loaded == 0 {
		fmt.Fprintln(e.w, "today's data file has no records")
		return types.OutcomeNoData, nil
	}

	// Loaded -> Filtered. The file is not rewritten on this branch.
	matched := make([]types.Record, 0, len(day.Records))
	for _, rec := range day.Records {
		if e.matcher.Matches(rec) {
			matched = append(matched, rec)
			continue
		}
		fmt.Fprintf(e.w, "keyword filter skipped: %s %q\n", rec.ID, truncate(rec.Title, 50))
	}
	rep.Matched = len(matched)
	fmt.Fprintf(e.w, "papers after keyword filter: %d\n", rep.Matched)
	if rep.Matched == 0 {
		fmt.Fprintln(e.w, "no papers left after keyword filter")
		return types.OutcomeNoNewContent, nil
	}

	// Filtered -> WindowBuilt.
	window := e.window(today)
	rep.HistorySize = len(window)
	fmt.Fprintf(e.w, "history window (%d days): %d ids\n", e.historyDays, rep.HistorySize)

	// WindowBuilt -> Classified.
	dups := make(map[string]struct{})
	for _, rec := range matched {
		if _, ok := window[rec.ID]; ok {
			dups[rec.ID] = struct{}{}
		}
	}
	rep.Duplicates = sortedKeys(dups)
	if len(dups) == 0 {
		rep.Survivors = len(matched)
		fmt.Fprintln(e.w, "all papers are new")
		return types.OutcomeNewContent, nil
	}
	fmt.Fprintf(e.w, "found %d duplicate(s) from history\n", len(dups))

	survivors := make([]types.Record, 0, len(matched))
	for _, rec := range matched {
		if _, ok := dups[rec.ID]; !ok {
			survivors = append(survivors, rec)
		}
	}
	rep.Survivors = len(survivors)
	fmt.Fprintf(e.w, "papers after deduplication: %d\n", rep.Survivors)

	// Classified -> Persisted.
	if len(survivors) > 0 {
		if err := e.store.Save(today, survivors); err != nil {
			return types.OutcomeError, fmt.Errorf("saving deduplicated data: %w", err)
		}
		rep.Action = ActionRewritten
		fmt.Fprintf(e.w, "today's file rewritten, removed %d duplicate(s)\n", len(dups))
		return types.OutcomeNewContent, nil
	}

	if err := e.store.Delete(today); err != nil {
		fmt.Fprintf(e.w, "warning: deleting today's file: %v\n", err)
	} else {
		rep.Action = ActionDeleted
		fmt.Fprintln(e.w, "all papers are duplicates, today's file deleted")
	}
	return types.OutcomeNoNewContent, nil
}

// window returns the union of ids in the historyDays days before today.
// Missing days contribute nothing; unreadable days are logged and skipped.
func (e *Engine) window(today time.Time) map[string]struct{} {
	ids := make(map[string]struct{})
	for i := 1; i <= e.historyDays; i++ {
		date := today.AddDate(0, 0, -i)
		past, err := e.store.LoadIDs(date)
		if err != nil {
			fmt.Fprintf(e.w, "warning: history %s: %v\n", date.Format(daystore.DateLayout), err)
			continue
		}
		for id := range past {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

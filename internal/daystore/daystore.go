// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package daystore reads and writes Day Files: one JSON object per line,
// one file per calendar date, named YYYY-MM-DD.jsonl under a data directory.
// It holds no business logic.
package daystore

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/daily-arxiv/pkg/types"
)

const (
	// DateLayout is the Day File naming format.
	DateLayout = "2006-01-02"
	fileExt    = ".jsonl"
)

// StorageError reports a Day File that could not be read, written, or removed.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Day is the parsed content of one Day File.
type Day struct {
	// Records are the parsed records in file order.
	Records []types.Record

	// IDs is the set of record ids.
	IDs map[string]struct{}

	// Skipped counts non-blank lines that could not be parsed as a JSON object.
	Skipped int
}

// Store accesses Day Files under a single data directory.
type Store struct {
	dir string
	w   io.Writer
}

// New returns a Store rooted at dir. Skipped lines and other diagnostics
// are written to w; a nil w discards them.
func New(dir string, w io.Writer) *Store {
	if w == nil {
		w = io.Discard
	}
	return &Store{dir: dir, w: w}
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the Day File path for date.
func (s *Store) Path(date time.Time) string {
	return filepath.Join(s.dir, date.Format(DateLayout)+fileExt)
}

// Exists reports whether a Day File exists for date.
func (s *Store) Exists(date time.Time) bool {
	info, err := os.Stat(s.Path(date))
	return err == nil && !info.IsDir()
}

// Load reads the Day File for date. A missing file yields an empty Day and
// no error. Lines that are not JSON objects are skipped, counted, and
// logged. A file that cannot be read yields an empty Day and a
// *StorageError.
func (s *Store) Load(date time.Time) (Day, error) {
	path := s.Path(date)
	day := Day{IDs: map[string]struct{}{}}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return day, nil
		}
		return day, &StorageError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		line, readErr := r.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return Day{IDs: map[string]struct{}{}}, &StorageError{Op: "read", Path: path, Err: readErr}
		}

		if rec, ok := decodeLine(line); ok {
			day.Records = append(day.Records, rec)
			day.IDs[rec.ID] = struct{}{}
		} else if len(bytes.TrimSpace(line)) > 0 {
			day.Skipped++
			fmt.Fprintf(s.w, "warning: %s:%d: skipping unparseable record\n", path, lineNo)
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
	}

	if day.Skipped > 0 {
		fmt.Fprintf(s.w, "%s: skipped %d unparseable line(s)\n", path, day.Skipped)
	}
	return day, nil
}

// decodeLine parses one line as a Record. Blank lines and anything that is
// not a JSON object report false. A field holding the wrong JSON type is
// left at its zero value; the record itself is kept.
func decodeLine(line []byte) (types.Record, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return types.Record{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return types.Record{}, false
	}
	rec := types.Record{
		ID:         idField(fields["id"]),
		Categories: listField(fields["categories"]),
		PDF:        stringField(fields["pdf"]),
		Abs:        stringField(fields["abs"]),
		Authors:    listField(fields["authors"]),
		Title:      stringField(fields["title"]),
		Comment:    stringField(fields["comment"]),
		Summary:    stringField(fields["summary"]),
		Raw:        append(json.RawMessage(nil), line...),
	}
	return rec, true
}

// idField reads an id given as a JSON string or number.
func idField(raw json.RawMessage) string {
	if s := stringField(raw); s != "" {
		return s
	}
	var n json.Number
	if len(raw) > 0 && raw[0] != '"' && json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func listField(raw json.RawMessage) []string {
	var list []string
	if len(raw) == 0 || json.Unmarshal(raw, &list) != nil {
		return nil
	}
	return list
}

// LoadIDs returns the id set of the Day File for date.
func (s *Store) LoadIDs(date time.Time) (map[string]struct{}, error) {
	day, err := s.Load(date)
	return day.IDs, err
}

// Save replaces the Day File for date with records, one per line. The
// content is written to a temporary file first and renamed into place, so
// a failed save leaves the previous file intact.
func (s *Store) Save(date time.Time, records []types.Record) error {
	path := s.Path(date)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &StorageError{Op: "save", Path: path, Err: err}
	}

	data, err := encodeRecords(records)
	if err != nil {
		return &StorageError{Op: "save", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, ".daystore-*.tmp")
	if err != nil {
		return &StorageError{Op: "save", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Chmod(tmpPath, 0o644)
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpPath, path)
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return &StorageError{Op: "save", Path: path, Err: writeErr}
	}
	return nil
}

// Append adds records to the end of the Day File for date, creating the
// data directory and file if needed. Each record is written as its own
// line so a truncated write never damages earlier entries.
func (s *Store) Append(date time.Time, records []types.Record) error {
	path := s.Path(date)
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &StorageError{Op: "append", Path: path, Err: err}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &StorageError{Op: "append", Path: path, Err: err}
	}

	for _, rec := range records {
		line, err := encodeRecords([]types.Record{rec})
		if err != nil {
			f.Close()
			return &StorageError{Op: "append", Path: path, Err: err}
		}
		if _, err := f.Write(line); err != nil {
			f.Close()
			return &StorageError{Op: "append", Path: path, Err: err}
		}
	}
	if err := f.Close(); err != nil {
		return &StorageError{Op: "append", Path: path, Err: err}
	}
	return nil
}

// Delete removes the Day File for date. A missing file is not an error.
func (s *Store) Delete(date time.Time) error {
	path := s.Path(date)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// Dates returns the dates that have a Day File, oldest first. A missing
// data directory yields no dates.
func (s *Store) Dates() ([]time.Time, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &StorageError{Op: "list", Path: s.dir, Err: err}
	}

	var dates []time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		d, err := time.ParseInLocation(DateLayout, strings.TrimSuffix(name, fileExt), time.Local)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// encodeRecords renders records as JSON lines. Records read from disk are
// written back from their original bytes.
func encodeRecords(records []types.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if len(rec.Raw) > 0 {
			buf.Write(rec.Raw)
			buf.WriteByte('\n')
			continue
		}
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("encoding record %s: %w", rec.ID, err)
		}
	}
	return buf.Bytes(), nil
}

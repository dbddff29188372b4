package predlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// DayResult is the day-level accuracy aggregate, attached only once every
// record for the day is settled.
type DayResult struct {
	Hits  int     `json:"hits"`
	Total int     `json:"total"`
	Pct   float64 `json:"pct"`
}

// NewDayResult computes an aggregate from hit and total counts.
func NewDayResult(hits, total int) *DayResult {
	pct := 0.0
	if total > 0 {
		pct = math.Round(float64(hits)/float64(total)*1000) / 10
	}
	return &DayResult{Hits: hits, Total: total, Pct: pct}
}

// DayEntry holds one calendar day's predictions. Dates are unique within a
// log.
type DayEntry struct {
	Date        string     `json:"date"` // YYYY-MM-DD
	Predictions []Record   `json:"predictions"`
	Result      *DayResult `json:"result,omitempty"`
	SavedAt     string     `json:"saved_at,omitempty"`
}

// Pending returns the indices of unsettled records in the entry.
func (d *DayEntry) Pending() []int {
	var idx []int
	for i := range d.Predictions {
		if d.Predictions[i].Pending() {
			idx = append(idx, i)
		}
	}
	return idx
}

// Log is the in-memory prediction log.
type Log struct {
	Days []DayEntry
}

// Day returns the entry for a date, or nil.
func (l *Log) Day(date string) *DayEntry {
	for i := range l.Days {
		if l.Days[i].Date == date {
			return &l.Days[i]
		}
	}
	return nil
}

// UpsertDay replaces the entry for a date, or appends one. Re-running the
// predictor for the same day replaces that day's records, never duplicates
// them.
func (l *Log) UpsertDay(date string, records []Record) {
	entry := DayEntry{
		Date:        date,
		Predictions: records,
		SavedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	for i := range l.Days {
		if l.Days[i].Date == date {
			l.Days[i] = entry
			return
		}
	}
	l.Days = append(l.Days, entry)
}

// PendingDates returns every date that still has unsettled records, in log
// order.
func (l *Log) PendingDates() []string {
	var dates []string
	for i := range l.Days {
		if len(l.Days[i].Pending()) > 0 {
			dates = append(dates, l.Days[i].Date)
		}
	}
	return dates
}

// Store reads and writes a log file.
type Store struct {
	path string
}

// NewStore creates a store for the given log file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the log file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the log. A missing or unparseable file is an error; callers that
// can start fresh should use LoadOrInit.
func (s *Store) Load() (*Log, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading log %s: %w", s.path, err)
	}

	var days []DayEntry
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("parsing log %s: %w", s.path, err)
	}
	return &Log{Days: collapseDuplicates(days)}, nil
}

// LoadOrInit reads the log, returning an empty log when the file does not
// exist yet.
func (s *Store) LoadOrInit() (*Log, error) {
	l, err := s.Load()
	if errors.Is(err, os.ErrNotExist) {
		return &Log{}, nil
	}
	return l, err
}

// Save writes the log atomically: a temp file in the same directory replaces
// the target via rename, so readers never observe a partial write.
func (s *Store) Save(l *Log) error {
	data, err := json.MarshalIndent(l.Days, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding log: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".predlog-*.json")
	if err != nil {
		return fmt.Errorf("creating temp log: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp log: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing log %s: %w", s.path, err)
	}
	return nil
}

// collapseDuplicates enforces at-most-one-entry-per-date on load. The log is
// occasionally hand-edited; a later duplicate wins, keeping the earlier
// entry's position.
func collapseDuplicates(days []DayEntry) []DayEntry {
	seen := make(map[string]int, len(days))
	out := days[:0]
	for _, d := range days {
		if i, ok := seen[d.Date]; ok {
			out[i] = d
			continue
		}
		seen[d.Date] = len(out)
		out = append(out, d)
	}
	return out
}

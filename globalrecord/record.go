// Package globalrecord keeps one status per session date that applies to
// the whole cohort, such as a cancelled session. Values set here are used
// in place of re-asking when a session is marked.
package globalrecord

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/amonks/cohort/attendance"
	"github.com/amonks/cohort/internal/state"
	"github.com/amonks/cohort/schedule"
)

// FileName is the record's file in the state directory.
const FileName = "global.json"

// LoadError reports an entry of the persisted record that does not parse.
type LoadError struct {
	Date string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("global record entry %q: %v", e.Date, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Record maps tracked dates to a status. Untracked dates are ignored by
// every operation.
type Record struct {
	path   string
	values map[schedule.Date]attendance.Status
}

// Load reads the record at path. Dates of universe missing from the file
// are tracked as Empty; a missing file tracks exactly universe.
func Load(path string, universe []schedule.Date) (*Record, error) {
	r := &Record{
		path:   path,
		values: make(map[schedule.Date]attendance.Status, len(universe)),
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read global record: %w", err)
	default:
		var raw map[string]string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &LoadError{Date: "(document)", Err: err}
		}
		for key, value := range raw {
			date, err := schedule.ParseDate(key)
			if err != nil {
				return nil, &LoadError{Date: key, Err: err}
			}
			status, err := attendance.ParseStatus(value)
			if err != nil {
				return nil, &LoadError{Date: key, Err: err}
			}
			r.values[date] = status
		}
	}

	for _, date := range universe {
		if _, ok := r.values[date]; !ok {
			r.values[date] = attendance.StatusEmpty
		}
	}
	return r, nil
}

// Track starts tracking each date not already in the record, as Empty.
// It reports how many dates were added.
func (r *Record) Track(dates []schedule.Date) int {
	added := 0
	for _, date := range dates {
		if _, ok := r.values[date]; !ok {
			r.values[date] = attendance.StatusEmpty
			added++
		}
	}
	return added
}

// Path returns the file the record persists to.
func (r *Record) Path() string {
	return r.path
}

// Tracked reports whether date is part of the record.
func (r *Record) Tracked(date schedule.Date) bool {
	_, ok := r.values[date]
	return ok
}

// Get returns the value for date and whether it is tracked.
func (r *Record) Get(date schedule.Date) (attendance.Status, bool) {
	status, ok := r.values[date]
	return status, ok
}

// Set overwrites the value for a tracked date in memory. It does nothing
// for an untracked date. Call Save to persist it.
func (r *Record) Set(date schedule.Date, status attendance.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", attendance.ErrInvalidStatus, status)
	}
	if _, ok := r.values[date]; ok {
		r.values[date] = status
	}
	return nil
}

// Swap is Set followed by Save.
func (r *Record) Swap(date schedule.Date, status attendance.Status) error {
	if err := r.Set(date, status); err != nil {
		return err
	}
	return r.Save()
}

// Resolve returns the tracked value for date, or proposed when that value
// is Empty or the date is untracked.
func (r *Record) Resolve(date schedule.Date, proposed attendance.Status) attendance.Status {
	if status := r.values[date]; !status.IsEmpty() {
		return status
	}
	return proposed
}

// UnsetDates returns the tracked dates whose value is still Empty.
func (r *Record) UnsetDates() []schedule.Date {
	var out []schedule.Date
	for date, status := range r.values {
		if status.IsEmpty() {
			out = append(out, date)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Save writes the record as a flat date to status map.
func (r *Record) Save() error {
	raw := make(map[string]string, len(r.values))
	for date, status := range r.values {
		raw[date.String()] = string(status)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal global record: %w", err)
	}
	if _, err := state.WriteFileIfChanged(filepath.Dir(r.path), r.path, append(data, '\n')); err != nil {
		return fmt.Errorf("write global record: %w", err)
	}
	return nil
}

package ledger

import (
	"fmt"

	"github.com/amonks/cohort/attendance"
	"github.com/amonks/cohort/schedule"
)

// Columns is the part of the roster an interlude rewrites.
type Columns interface {
	DateColumns() []schedule.Date
	GetColumn(date schedule.Date) ([]attendance.Status, error)
	SetColumn(date schedule.Date, values []attendance.Status) error
	AddColumn(date schedule.Date) error
	DropColumn(date schedule.Date) error
	RenameColumn(from, to schedule.Date) error
}

// Rename is one relabelled roster column.
type Rename struct {
	From schedule.Date
	To   schedule.Date
}

// Remap describes how the roster's date columns were rewritten.
type Remap struct {
	Dropped []schedule.Date
	Renamed []Rename
	Added   []schedule.Date
}

// PlanInterlude validates an interlude against the ledger and the roster
// and returns the new session dates and the column remap, without changing
// anything.
func (l *Ledger) PlanInterlude(cols Columns, in schedule.Interlude) ([]schedule.Date, Remap, error) {
	if err := l.requireUpdated(); err != nil {
		return nil, Remap{}, err
	}
	if l.interlude != nil {
		return nil, Remap{}, fmt.Errorf("%w: %s to %s", ErrInterludeActive, l.interlude.Start, l.interlude.End)
	}
	if in.End.Before(in.Start) {
		return nil, Remap{}, fmt.Errorf("%w: resumption %s is before %s", schedule.ErrOrder, in.End, in.Start)
	}
	if !l.classDays.Contains(in.Start.Weekday()) {
		return nil, Remap{}, fmt.Errorf("%w: %s is a %s, class days are %s", ErrScheduleMismatch, in.Start, in.Start.Weekday(), l.classDays)
	}
	if !l.classDays.Contains(in.End.Weekday()) {
		return nil, Remap{}, fmt.Errorf("%w: resumption %s is a %s, class days are %s", ErrScheduleMismatch, in.End, in.End.Weekday(), l.classDays)
	}
	for _, held := range l.held.sorted() {
		if !held.Before(in.Start) {
			return nil, Remap{}, fmt.Errorf("%w: session %s was already held; an interlude must start after it", schedule.ErrOrder, held)
		}
	}

	if _, last := schedule.Bounds(l.orientation, l.weeks); in.End.After(last) {
		return nil, Remap{}, fmt.Errorf("%w: resumption %s is after the course ends on %s", schedule.ErrRange, in.End, last)
	}

	full, err := schedule.Generate(l.orientation, l.classDays, l.weeks)
	if err != nil {
		return nil, Remap{}, err
	}
	dates := schedule.Splice(full, in)

	remap, err := planRemap(cols.DateColumns(), dates, in.Start)
	if err != nil {
		return nil, Remap{}, err
	}
	return dates, remap, nil
}

// ApplyInterlude pauses the schedule and remaps the roster's date columns
// from the interlude's start onward. Validation happens before any change.
// If rewriting the roster fails part way, the steps already taken are
// reversed and the ledger is left as it was.
func (l *Ledger) ApplyInterlude(cols Columns, in schedule.Interlude) (Remap, error) {
	dates, remap, err := l.PlanInterlude(cols, in)
	if err != nil {
		return Remap{}, err
	}
	if err := applyRemap(cols, remap); err != nil {
		return Remap{}, err
	}

	applied := in
	l.interlude = &applied
	l.dates = dates
	return remap, nil
}

func applyRemap(cols Columns, remap Remap) error {
	var undo []func() error
	fail := func(err error) error {
		for i := len(undo) - 1; i >= 0; i-- {
			if uerr := undo[i](); uerr != nil {
				return fmt.Errorf("%w (restoring roster columns: %v)", err, uerr)
			}
		}
		return err
	}

	for _, date := range remap.Dropped {
		date := date
		values, err := cols.GetColumn(date)
		if err != nil {
			return fail(fmt.Errorf("drop column %s: %w", date, err))
		}
		if err := cols.DropColumn(date); err != nil {
			return fail(fmt.Errorf("drop column %s: %w", date, err))
		}
		undo = append(undo, func() error {
			if err := cols.AddColumn(date); err != nil {
				return err
			}
			return cols.SetColumn(date, values)
		})
	}
	for _, r := range remap.Renamed {
		r := r
		if err := cols.RenameColumn(r.From, r.To); err != nil {
			return fail(fmt.Errorf("rename column %s: %w", r.From, err))
		}
		undo = append(undo, func() error { return cols.RenameColumn(r.To, r.From) })
	}
	for _, date := range remap.Added {
		date := date
		if err := cols.AddColumn(date); err != nil {
			return fail(fmt.Errorf("add column %s: %w", date, err))
		}
		undo = append(undo, func() error { return cols.DropColumn(date) })
	}
	return nil
}

// planRemap matches the existing columns on or after anchor positionally
// against the new dates on or after anchor. Trailing extra columns are
// dropped, missing ones are added, and the rest are relabelled. Renamed is
// in execution order: backward moves first to last, then forward moves
// last to first, so each target is free when it is reached.
func planRemap(columns, dates []schedule.Date, anchor schedule.Date) (Remap, error) {
	var old, next []schedule.Date
	labels := make(map[schedule.Date]bool, len(columns))
	for _, c := range columns {
		labels[c] = true
		if !c.Before(anchor) {
			old = append(old, c)
		}
	}
	for _, d := range dates {
		if !d.Before(anchor) {
			next = append(next, d)
		}
	}

	var remap Remap
	keep := min(len(old), len(next))
	for _, c := range old[keep:] {
		remap.Dropped = append(remap.Dropped, c)
		delete(labels, c)
	}
	var forward []Rename
	for i := 0; i < keep; i++ {
		switch {
		case next[i].Before(old[i]):
			remap.Renamed = append(remap.Renamed, Rename{From: old[i], To: next[i]})
		case next[i].After(old[i]):
			forward = append(forward, Rename{From: old[i], To: next[i]})
		}
	}
	for i := len(forward) - 1; i >= 0; i-- {
		remap.Renamed = append(remap.Renamed, forward[i])
	}

	for _, r := range remap.Renamed {
		if labels[r.To] {
			return Remap{}, fmt.Errorf("%w: cannot relabel %s as %s", ErrRosterConflict, r.From, r.To)
		}
		delete(labels, r.From)
		labels[r.To] = true
	}
	for _, d := range next[keep:] {
		if labels[d] {
			return Remap{}, fmt.Errorf("%w: column %s already exists", ErrRosterConflict, d)
		}
		labels[d] = true
		remap.Added = append(remap.Added, d)
	}
	return remap, nil
}

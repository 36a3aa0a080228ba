package schedule

import (
	"encoding/json"
	"fmt"
)

// Interlude is a pause in the course. Sessions from Start up to (but not
// including) End are skipped; the schedule resumes on End.
type Interlude struct {
	Start Date
	Shift int
	End   Date
}

// NewResumeInterlude builds an interlude that resumes classes on resume.
func NewResumeInterlude(anchor, resume Date) (Interlude, error) {
	if anchor.IsZero() || resume.IsZero() {
		return Interlude{}, fmt.Errorf("%w: interlude needs both a start and a resumption date", ErrConfig)
	}
	if resume.Before(anchor) {
		return Interlude{}, fmt.Errorf("%w: resumption %s is before interlude start %s", ErrOrder, resume, anchor)
	}
	return Interlude{Start: anchor, End: resume, Shift: anchor.DaysUntil(resume)}, nil
}

// NewShiftInterlude builds an interlude that pushes the anchor session
// shift days later.
func NewShiftInterlude(anchor Date, shift int) (Interlude, error) {
	if anchor.IsZero() {
		return Interlude{}, fmt.Errorf("%w: interlude needs a start date", ErrConfig)
	}
	if shift <= 0 {
		return Interlude{}, fmt.Errorf("%w: shift must be positive, got %d days", ErrRange, shift)
	}
	return Interlude{Start: anchor, End: anchor.AddDays(shift), Shift: shift}, nil
}

// Splice removes the interlude from a full schedule. Dates before Start are
// kept as they are; the remainder of the schedule picks up on End and runs
// to the original end of the course.
func Splice(full []Date, in Interlude) []Date {
	out := make([]Date, 0, len(full))
	for _, d := range full {
		if d.Before(in.Start) || !d.Before(in.End) {
			out = append(out, d)
		}
	}
	return out
}

type interludeJSON struct {
	Start Date `json:"start"`
	Shift int  `json:"shift"`
	End   Date `json:"end"`
}

// MarshalJSON encodes the interlude as {start, shift, end}.
func (in Interlude) MarshalJSON() ([]byte, error) {
	return json.Marshal(interludeJSON(in))
}

// UnmarshalJSON decodes {start, shift, end} and checks they agree.
func (in *Interlude) UnmarshalJSON(data []byte) error {
	var raw interludeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Start.IsZero() {
		return fmt.Errorf("interlude start is required")
	}
	switch {
	case raw.End.IsZero() && raw.Shift > 0:
		raw.End = raw.Start.AddDays(raw.Shift)
	case raw.End.IsZero():
		return fmt.Errorf("interlude needs an end date or a positive shift")
	}
	if raw.End.Before(raw.Start) {
		return fmt.Errorf("interlude end %s is before start %s", raw.End, raw.Start)
	}
	raw.Shift = raw.Start.DaysUntil(raw.End)
	*in = Interlude(raw)
	return nil
}

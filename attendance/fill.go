package attendance

import (
	"fmt"

	"github.com/amonks/cohort/schedule"
)

// Sheet is the slice of a roster the fill operations read and write.
// Students are addressed by their row index.
type Sheet interface {
	Len() int
	GetColumn(date schedule.Date) ([]Status, error)
	SetColumn(date schedule.Date, values []Status) error
	GetCell(date schedule.Date, student int) (Status, error)
	SetCell(date schedule.Date, student int, value Status) error
}

// EditAll applies fill to every student's cell for date using Merge.
func EditAll(sheet Sheet, date schedule.Date, fill Status) error {
	if !fill.IsValid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, fill)
	}
	column, err := sheet.GetColumn(date)
	if err != nil {
		return err
	}
	merged := make([]Status, len(column))
	for i, existing := range column {
		merged[i] = Merge(existing, fill)
	}
	return sheet.SetColumn(date, merged)
}

// EditCell overwrites one student's cell without any merge rule.
func EditCell(sheet Sheet, date schedule.Date, student int, value Status) error {
	if !value.IsValid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, value)
	}
	return sheet.SetCell(date, student, value)
}

// ApplyResponses records collected responses for date. Students with a
// response get it verbatim unless the session was cancelled; everyone else
// gets fallback merged onto their current cell.
func ApplyResponses(sheet Sheet, date schedule.Date, responses map[int]Status, fallback Status) error {
	if !fallback.IsValid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, fallback)
	}
	column, err := sheet.GetColumn(date)
	if err != nil {
		return err
	}
	updated := make([]Status, len(column))
	for i, existing := range column {
		response, ok := responses[i]
		switch {
		case ok && !response.IsValid():
			return fmt.Errorf("student %d: %w %q", i, ErrInvalidStatus, response)
		case ok && existing != StatusNoClass && fallback != StatusNoClass:
			updated[i] = response
		default:
			updated[i] = Merge(existing, fallback)
		}
	}
	return sheet.SetColumn(date, updated)
}

// ApplyCDS marks every session in dates that falls on weekday as the
// student's CDS day. Cancelled sessions are left alone. It returns the
// number of cells changed.
func ApplyCDS(sheet Sheet, dates []schedule.Date, student int, weekday schedule.Weekday) (int, error) {
	if !weekday.IsValid() {
		return 0, fmt.Errorf("invalid CDS weekday %d", int(weekday))
	}
	changed := 0
	for _, date := range dates {
		if date.Weekday() != weekday {
			continue
		}
		existing, err := sheet.GetCell(date, student)
		if err != nil {
			return changed, err
		}
		if existing == StatusNoClass || existing == StatusCDS {
			continue
		}
		if err := sheet.SetCell(date, student, StatusCDS); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// Tally counts each status for one student.
type Tally map[Status]int

// Sessions returns the number of sessions that took place for the student.
func (t Tally) Sessions() int {
	total := 0
	for status, n := range t {
		if status != StatusNoClass && status != StatusEmpty {
			total += n
		}
	}
	return total
}

// Summarize tallies each student's statuses over dates.
func Summarize(sheet Sheet, dates []schedule.Date) ([]Tally, error) {
	tallies := make([]Tally, sheet.Len())
	for i := range tallies {
		tallies[i] = Tally{}
	}
	for _, date := range dates {
		column, err := sheet.GetColumn(date)
		if err != nil {
			return nil, err
		}
		for i, status := range column {
			if i < len(tallies) {
				tallies[i][status]++
			}
		}
	}
	return tallies, nil
}

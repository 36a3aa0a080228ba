package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned for unusable schedule inputs.
	ErrConfig = errors.New("invalid schedule configuration")

	// ErrOrder is returned when an interlude resumes before it starts.
	ErrOrder = errors.New("dates out of order")

	// ErrRange is returned for shifts or positions outside the allowed range.
	ErrRange = errors.New("value out of range")
)

// Bounds returns the first and last calendar day considered for a course
// of the given length. The window starts the day after orientation, is
// carried through the Sunday that completes its final week, and closes on
// the Monday after that Sunday.
func Bounds(orientation Date, weeks int) (first, last Date) {
	first = orientation.AddDays(1)
	last = orientation.AddDays(7*weeks - 1)
	for last.Weekday() != Sunday {
		last = last.AddDays(1)
	}
	return first, last.AddDays(1)
}

// Generate lists every session date of the course in ascending order.
func Generate(orientation Date, classDays ClassDays, weeks int) ([]Date, error) {
	if err := validateInputs(orientation, classDays, weeks); err != nil {
		return nil, err
	}

	first, last := Bounds(orientation, weeks)
	dates := make([]Date, 0, ClassDaysCount*(weeks+1))
	for day := first; !day.After(last); day = day.AddDays(1) {
		if classDays.Contains(day.Weekday()) {
			dates = append(dates, day)
		}
	}
	return dates, nil
}

func validateInputs(orientation Date, classDays ClassDays, weeks int) error {
	if orientation.IsZero() {
		return fmt.Errorf("%w: orientation date is not set", ErrConfig)
	}
	if err := classDays.Validate(); err != nil {
		return err
	}
	if weeks < 1 {
		return fmt.Errorf("%w: weeks must be at least 1, got %d", ErrConfig, weeks)
	}
	return nil
}

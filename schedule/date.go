// Package schedule expands a cohort's weekly class pattern into concrete
// session dates and models interludes that pause or shift that schedule.
//
// Dates are civil dates without a time of day. They are written in the
// fixed dd/mm/yyyy layout everywhere they are persisted or displayed.
package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the dd/mm/yyyy layout used for every persisted date.
const DateLayout = "02/01/2006"

// Date is a calendar date. The zero Date means "unset".
//
// Date is comparable and safe to use as a map key.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate returns the date for the given year, month, and day, normalizing
// out-of-range values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses a dd/mm/yyyy string.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, fmt.Errorf("%w: empty date, expected dd/mm/yyyy", ErrConfig)
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q, expected dd/mm/yyyy", ErrConfig, value)
	}
	return DateOf(t), nil
}

// MustParseDate is like ParseDate but panics on error. It is meant for
// tests and constants.
func MustParseDate(value string) Date {
	d, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// String formats d as dd/mm/yyyy. The zero Date formats as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateLayout)
}

// Weekday returns the day of the week, Monday first.
func (d Date) Weekday() Weekday {
	return FromTimeWeekday(d.Time().Weekday())
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysUntil returns the number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// Compare returns -1, 0, or +1 depending on whether d is before, equal to,
// or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.year != other.year:
		return cmpInt(d.year, other.year)
	case d.month != other.month:
		return cmpInt(int(d.month), int(other.month))
	default:
		return cmpInt(d.day, other.day)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MarshalJSON encodes d as a dd/mm/yyyy string, or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a dd/mm/yyyy string. null leaves d unset.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("date must be a dd/mm/yyyy string")
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Index returns the position of d in dates, or -1.
func Index(dates []Date, d Date) int {
	for i, candidate := range dates {
		if candidate == d {
			return i
		}
	}
	return -1
}

// Contains reports whether d is in dates.
func Contains(dates []Date, d Date) bool {
	return Index(dates, d) >= 0
}

// Strings formats each date as dd/mm/yyyy.
func Strings(dates []Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}

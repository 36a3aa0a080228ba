package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	internalstrings "github.com/amonks/cohort/internal/strings"
)

// Weekday is a day of the week with Monday as 0 and Sunday as 6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// FromTimeWeekday converts a time.Weekday (Sunday first) to a Weekday.
func FromTimeWeekday(wd time.Weekday) Weekday {
	return Weekday((int(wd) + 6) % 7)
}

// IsValid reports whether w is between Monday and Sunday.
func (w Weekday) IsValid() bool {
	return w >= Monday && w <= Sunday
}

// String returns the lowercase English name of w.
func (w Weekday) String() string {
	if !w.IsValid() {
		return fmt.Sprintf("weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Short returns the three-letter abbreviation of w, e.g. "Mon".
func (w Weekday) Short() string {
	if !w.IsValid() {
		return w.String()
	}
	name := weekdayNames[w]
	return strings.ToUpper(name[:1]) + name[1:3]
}

// ParseWeekday accepts an index 0-6, an English weekday name, or its
// three-letter abbreviation.
func ParseWeekday(value string) (Weekday, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	if normalized == "" {
		return 0, fmt.Errorf("%w: empty weekday", ErrConfig)
	}
	if n, err := strconv.Atoi(normalized); err == nil {
		w := Weekday(n)
		if !w.IsValid() {
			return 0, fmt.Errorf("%w: weekday index %d out of range 0-6", ErrConfig, n)
		}
		return w, nil
	}
	for i, name := range weekdayNames {
		if normalized == name || normalized == name[:3] {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrConfig, value)
}

// ClassDaysCount is the number of weekdays a cohort meets on.
const ClassDaysCount = 3

// ClassDays is the weekly meeting pattern of a cohort.
type ClassDays []Weekday

// ParseClassDays parses a comma separated list of weekdays.
func ParseClassDays(value string) (ClassDays, error) {
	var days ClassDays
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		w, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		days = append(days, w)
	}
	if err := days.Validate(); err != nil {
		return nil, err
	}
	return days, nil
}

// Validate checks that there are exactly three distinct valid weekdays.
func (c ClassDays) Validate() error {
	if len(c) != ClassDaysCount {
		return fmt.Errorf("%w: need exactly %d class days, got %d", ErrConfig, ClassDaysCount, len(c))
	}
	seen := make(map[Weekday]bool, len(c))
	for _, w := range c {
		if !w.IsValid() {
			return fmt.Errorf("%w: weekday index %d out of range 0-6", ErrConfig, int(w))
		}
		if seen[w] {
			return fmt.Errorf("%w: class day %s listed twice", ErrConfig, w)
		}
		seen[w] = true
	}
	return nil
}

// Contains reports whether w is one of the class days.
func (c ClassDays) Contains(w Weekday) bool {
	for _, day := range c {
		if day == w {
			return true
		}
	}
	return false
}

// Sorted returns a copy ordered Monday first.
func (c ClassDays) Sorted() ClassDays {
	out := append(ClassDays(nil), c...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String formats the days as "Mon, Wed, Fri".
func (c ClassDays) String() string {
	parts := make([]string, len(c))
	for i, w := range c {
		parts[i] = w.Short()
	}
	return strings.Join(parts, ", ")
}

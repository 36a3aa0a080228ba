package schedule

import (
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

var monWedFri = ClassDays{Monday, Wednesday, Friday}

func TestGenerate_OneWeekFromMonday(t *testing.T) {
	orientation := MustParseDate("16/06/2025")
	if orientation.Weekday() != Monday {
		t.Fatalf("expected orientation on a Monday, got %s", orientation.Weekday())
	}

	dates, err := Generate(orientation, monWedFri, 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := []Date{
		MustParseDate("18/06/2025"),
		MustParseDate("20/06/2025"),
		MustParseDate("23/06/2025"),
	}
	if !reflect.DeepEqual(dates, want) {
		t.Fatalf("dates = %v, want %v", Strings(dates), Strings(want))
	}
}

func TestGenerate_ClassDaysOrderDoesNotMatter(t *testing.T) {
	orientation := MustParseDate("16/06/2025")

	a, err := Generate(orientation, ClassDays{Friday, Monday, Wednesday}, 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(orientation, monWedFri, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("schedules differ:\n%v\n%v", Strings(a), Strings(b))
	}
	if len(a) != 12 {
		t.Fatalf("expected 12 sessions over 4 weeks, got %d", len(a))
	}
}

func TestGenerate_Errors(t *testing.T) {
	orientation := MustParseDate("16/06/2025")

	tests := []struct {
		name        string
		orientation Date
		days        ClassDays
		weeks       int
	}{
		{"unset orientation", Date{}, monWedFri, 2},
		{"two days", orientation, ClassDays{Monday, Friday}, 2},
		{"duplicate day", orientation, ClassDays{Monday, Monday, Friday}, 2},
		{"out of range day", orientation, ClassDays{Monday, Weekday(9), Friday}, 2},
		{"zero weeks", orientation, monWedFri, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.orientation, tt.days, tt.weeks)
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestGenerate_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		offset := rapid.IntRange(0, 3650).Draw(t, "offset")
		orientation := MustParseDate("01/01/2020").AddDays(offset)
		weeks := rapid.IntRange(1, 20).Draw(t, "weeks")
		picked := rapid.Permutation([]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}).Draw(t, "days")
		days := ClassDays(picked[:ClassDaysCount])

		dates, err := Generate(orientation, days, weeks)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		first, last := Bounds(orientation, weeks)
		if last.Weekday() != Monday {
			t.Fatalf("range ends on %s", last.Weekday())
		}
		if sunday := last.AddDays(-1); sunday.Weekday() != Sunday {
			t.Fatalf("day before %s is a %s", last, sunday.Weekday())
		}
		if nominal := orientation.AddDays(7*weeks - 1); last.Before(nominal) {
			t.Fatalf("range ends %s, before %s", last, nominal)
		}
		if last.DaysUntil(orientation.AddDays(7*weeks-1)) < -7 {
			t.Fatalf("range ends %s, more than a week past the final week", last)
		}
		// The orientation weekday itself can fall one short in the last week.
		if len(dates) < ClassDaysCount*weeks-1 {
			t.Fatalf("expected at least %d dates, got %d", ClassDaysCount*weeks-1, len(dates))
		}
		for i, d := range dates {
			if !days.Contains(d.Weekday()) {
				t.Fatalf("date %s falls on %s, not a class day", d, d.Weekday())
			}
			if d.Before(first) || d.After(last) {
				t.Fatalf("date %s outside %s..%s", d, first, last)
			}
			if i > 0 && !dates[i-1].Before(d) {
				t.Fatalf("dates not strictly increasing at %d: %s then %s", i, dates[i-1], d)
			}
		}
	})
}

func TestGenerate_MidweekOrientationCompletesFinalWeek(t *testing.T) {
	orientation := MustParseDate("17/06/2025")
	if orientation.Weekday() != Tuesday {
		t.Fatalf("expected orientation on a Tuesday, got %s", orientation.Weekday())
	}

	first, last := Bounds(orientation, 2)
	if first != MustParseDate("18/06/2025") || last != MustParseDate("07/07/2025") {
		t.Fatalf("Bounds = %s..%s", first, last)
	}

	dates, err := Generate(orientation, monWedFri, 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := []string{
		"18/06/2025", "20/06/2025", "23/06/2025", "25/06/2025", "27/06/2025",
		"30/06/2025", "02/07/2025", "04/07/2025", "07/07/2025",
	}
	if !reflect.DeepEqual(Strings(dates), want) {
		t.Fatalf("dates = %v, want %v", Strings(dates), want)
	}
}

func TestGenerate_MondayOrientationStaysWithinWeeks(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		weeks := rapid.IntRange(1, 12).Draw(t, "weeks")
		picked := rapid.Permutation([]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}).Draw(t, "days")
		orientation := MustParseDate("16/06/2025")

		dates, err := Generate(orientation, ClassDays(picked[:ClassDaysCount]), weeks)
		if err != nil {
			t.Fatal(err)
		}
		if len(dates) != ClassDaysCount*weeks {
			t.Fatalf("expected %d dates, got %d", ClassDaysCount*weeks, len(dates))
		}
		limit := orientation.AddDays(7 * weeks)
		if dates[len(dates)-1].After(limit) {
			t.Fatalf("last date %s after %s", dates[len(dates)-1], limit)
		}
	})
}

package attendance

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func TestMerge_Table(t *testing.T) {
	tests := []struct {
		existing Status
		fill     Status
		want     Status
	}{
		{StatusEmpty, StatusPresent, StatusPresent},
		{StatusExcused, StatusAbsent, StatusExcused},
		{StatusCDS, StatusAbsent, StatusCDS},
		{StatusPresent, StatusNoClass, StatusNoClass},
		{StatusAbsent, StatusPresent, StatusPresent},
		{StatusCDS, StatusNoClass, StatusNoClass},
		{StatusCDS, StatusPresent, StatusCDS},
		{StatusExcused, StatusPresent, StatusPresent},
		{StatusPresent, StatusEmpty, StatusEmpty},
	}

	for _, tt := range tests {
		got := Merge(tt.existing, tt.fill)
		if got != tt.want {
			t.Errorf("Merge(%q, %q) = %q, want %q", tt.existing, tt.fill, got, tt.want)
		}
	}
}

func TestMerge_Properties(t *testing.T) {
	statuses := ValidStatuses()
	rapid.Check(t, func(t *rapid.T) {
		existing := rapid.SampledFrom(statuses).Draw(t, "existing")
		fill := rapid.SampledFrom(statuses).Draw(t, "fill")
		got := Merge(existing, fill)

		if got != existing && got != fill {
			t.Fatalf("Merge(%q, %q) = %q invented a value", existing, fill, got)
		}
		if fill == StatusNoClass && got != StatusNoClass {
			t.Fatalf("cancellation lost: %q", got)
		}
		if existing == StatusCDS && fill != StatusNoClass && got != StatusCDS {
			t.Fatalf("CDS overridden by %q", fill)
		}
		if Merge(got, fill) != got {
			t.Fatalf("Merge not idempotent for (%q, %q)", existing, fill)
		}
	})
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"":         StatusEmpty,
		"P":        StatusPresent,
		" present": StatusPresent,
		"E":        StatusExcused,
		"cds":      StatusCDS,
		"A":        StatusAbsent,
		"NC":       StatusNoClass,
		"No Class": StatusNoClass,
		"no_class": StatusNoClass,
	}
	for input, want := range tests {
		got, err := ParseStatus(input)
		if err != nil {
			t.Errorf("ParseStatus(%q) failed: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseStatus(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := ParseStatus("late"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestStatusCodesRoundTrip(t *testing.T) {
	for _, status := range ValidStatuses() {
		parsed, err := ParseStatus(status.Code())
		if err != nil {
			t.Fatalf("ParseStatus(%q) failed: %v", status.Code(), err)
		}
		if parsed != status {
			t.Errorf("code %q parsed as %q, want %q", status.Code(), parsed, status)
		}
	}
}

package ui

import "testing"

func TestPrefixLength(t *testing.T) {
	tests := []struct {
		name   string
		length map[string]int
		id     string
		want   int
	}{
		{
			name:   "case insensitive lookup",
			length: map[string]int{"abc123": 4},
			id:     "ABC123",
			want:   4,
		},
		{
			name:   "missing id",
			length: map[string]int{"abc123": 4},
			id:     "",
			want:   0,
		},
		{
			name:   "nil map",
			length: nil,
			id:     "ABC123",
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrefixLength(tt.length, tt.id); got != tt.want {
				t.Fatalf("PrefixLength() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUniqueIDPrefixLengths(t *testing.T) {
	lengths := UniqueIDPrefixLengths([]string{
		"3f2a9c1e-0000-4000-8000-000000000001",
		"3f2b0000-0000-4000-8000-000000000002",
		"9c000000-0000-4000-8000-000000000003",
		"9C000000-0000-4000-8000-000000000003",
	})

	if len(lengths) != 3 {
		t.Fatalf("expected duplicates to collapse, got %d entries", len(lengths))
	}
	if got := PrefixLength(lengths, "3f2a9c1e-0000-4000-8000-000000000001"); got != 4 {
		t.Errorf("expected prefix 4, got %d", got)
	}
	if got := PrefixLength(lengths, "9C000000-0000-4000-8000-000000000003"); got != 1 {
		t.Errorf("expected prefix 1, got %d", got)
	}
}

func TestHighlightIDWithoutTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := HighlightID("abc123", 3); got != "abc123" {
		t.Fatalf("expected plain ID without color, got %q", got)
	}
}

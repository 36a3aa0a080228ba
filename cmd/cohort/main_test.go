package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/cohort/schedule"
)

func TestRootCommandName(t *testing.T) {
	if rootCmd.Use != "cohort" {
		t.Fatalf("expected root command name cohort, got %q", rootCmd.Use)
	}
}

func TestPrintErrorWraps(t *testing.T) {
	var buf bytes.Buffer
	err := errors.New(strings.Repeat("word ", 30))
	printError(&buf, err, 40)

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if len(line) > 40 {
			t.Fatalf("line longer than 40 columns: %q", line)
		}
	}
	if !strings.HasPrefix(buf.String(), "cohort: word") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestClassDaysValue(t *testing.T) {
	var v classDaysValue
	if v.String() != "" {
		t.Fatalf("expected empty default, got %q", v.String())
	}
	if err := v.Set("mon, wednesday,4"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v.String() != "Mon, Wed, Fri" {
		t.Fatalf("String = %q", v.String())
	}
	if err := v.Set("mon,tue"); !errors.Is(err, schedule.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if v.Type() != "days" {
		t.Fatalf("Type = %q", v.Type())
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{name: "none", values: []string{"", ""}, want: ""},
		{name: "flag wins", values: []string{"flag.xlsx", "config.xlsx"}, want: filepath.Join("/work", "flag.xlsx")},
		{name: "config fallback", values: []string{"", "/abs/roster.xlsx"}, want: "/abs/roster.xlsx"},
		{name: "home", values: []string{"~/cohort/roster.xlsx"}, want: "/home/tester/cohort/roster.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePath("/work", tt.values...)
			if err != nil {
				t.Fatalf("resolvePath: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDateArg(t *testing.T) {
	d, err := dateArg(nil, 0)
	if err != nil || !d.IsZero() {
		t.Fatalf("missing arg: %v %v", d, err)
	}
	d, err = dateArg([]string{"18/06/2025"}, 0)
	if err != nil || d != schedule.MustParseDate("18/06/2025") {
		t.Fatalf("got %v %v", d, err)
	}
	if _, err := dateArg([]string{"2025-06-18"}, 0); err == nil {
		t.Fatal("expected error for ISO date")
	}
}

package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/amonks/cohort/schedule"
)

func encodeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func joinDates(dates []schedule.Date) string {
	if len(dates) == 0 {
		return "-"
	}
	return strings.Join(schedule.Strings(dates), ", ")
}

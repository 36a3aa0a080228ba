// Package attendance defines per-session attendance values and the rules
// for filling them in across a roster.
package attendance

import (
	"errors"

	internalstrings "github.com/amonks/cohort/internal/strings"
	"github.com/amonks/cohort/internal/validation"
)

// Status is the attendance value of one student for one session.
type Status string

const (
	// StatusEmpty means nothing has been recorded yet.
	StatusEmpty Status = ""

	// StatusPresent indicates the student attended.
	StatusPresent Status = "present"

	// StatusExcused indicates an approved absence.
	StatusExcused Status = "excused"

	// StatusCDS indicates the session falls on the student's community
	// development service day.
	StatusCDS Status = "cds"

	// StatusAbsent indicates the student missed the session.
	StatusAbsent Status = "absent"

	// StatusNoClass indicates the session did not take place.
	StatusNoClass Status = "no_class"
)

// ErrInvalidStatus is returned when a value is not a known status.
var ErrInvalidStatus = errors.New("invalid attendance status")

// ValidStatuses returns every status, including StatusEmpty.
func ValidStatuses() []Status {
	return []Status{StatusPresent, StatusExcused, StatusCDS, StatusAbsent, StatusNoClass, StatusEmpty}
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// IsEmpty reports whether nothing has been recorded.
func (s Status) IsEmpty() bool {
	return s == StatusEmpty
}

var statusCodes = map[Status]string{
	StatusPresent: "P",
	StatusExcused: "E",
	StatusCDS:     "CDS",
	StatusAbsent:  "A",
	StatusNoClass: "NC",
	StatusEmpty:   "",
}

// Code returns the short code written into roster cells.
func (s Status) Code() string {
	return statusCodes[s]
}

// Label returns a human readable name.
func (s Status) Label() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusExcused:
		return "Excused"
	case StatusCDS:
		return "CDS"
	case StatusAbsent:
		return "Absent"
	case StatusNoClass:
		return "No Class"
	case StatusEmpty:
		return "-"
	default:
		return string(s)
	}
}

// ParseStatus accepts canonical names, labels, and short codes
// (P, E, CDS, A, NC). The empty string parses as StatusEmpty.
func ParseStatus(value string) (Status, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	switch normalized {
	case "":
		return StatusEmpty, nil
	case "present", "p":
		return StatusPresent, nil
	case "excused", "e":
		return StatusExcused, nil
	case "cds":
		return StatusCDS, nil
	case "absent", "a":
		return StatusAbsent, nil
	case "no_class", "no class", "noclass", "nc":
		return StatusNoClass, nil
	}
	return StatusEmpty, validation.FormatInvalidValueError(ErrInvalidStatus, Status(value), ValidStatuses()[:5])
}

// Merge returns the value a cell should hold when fill is applied to every
// student of a session and the student's cell currently holds existing.
//
// A cancellation always wins. Otherwise a CDS day is kept, and an excuse is
// never downgraded to absent. Any other fill replaces the existing value.
func Merge(existing, fill Status) Status {
	switch {
	case fill == StatusNoClass:
		return fill
	case existing == StatusCDS:
		return existing
	case fill == StatusAbsent && existing == StatusExcused:
		return existing
	default:
		return fill
	}
}

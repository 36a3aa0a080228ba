package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotUpdated is returned when the session dates have not been
	// computed since the ledger was loaded or reconfigured.
	ErrNotUpdated = errors.New("ledger dates not computed; refresh the ledger first")

	// ErrNotConfigured is returned when the ledger has no schedule yet.
	ErrNotConfigured = errors.New("cohort schedule not configured; run cohort init")

	// ErrNotScheduled is returned for a date that is not a session date.
	ErrNotScheduled = errors.New("not a scheduled session date")

	// ErrScheduleMismatch is returned when an interlude does not line up
	// with the cohort's class days.
	ErrScheduleMismatch = errors.New("interlude does not fall on a class day")

	// ErrInterludeActive is returned when an interlude is already in effect.
	ErrInterludeActive = errors.New("an interlude is already in effect")

	// ErrScheduleLocked is returned when reconfiguring after sessions were held.
	ErrScheduleLocked = errors.New("schedule is locked once a session has been held")

	// ErrRosterConflict is returned when the roster's date columns cannot be
	// remapped onto a new schedule.
	ErrRosterConflict = errors.New("roster date columns conflict with the new schedule")

	// ErrUnknownKind is returned for an artifact or report kind that does not exist.
	ErrUnknownKind = errors.New("unknown kind")
)

// LoadError reports a malformed field in a persisted ledger.
type LoadError struct {
	Field string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("ledger field %q: %v", e.Field, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ArtifactIntegrityError is the panic value raised when an artifact is
// recorded without having been issued. It can only happen if a form
// service hands back an artifact the ledger never created.
type ArtifactIntegrityError struct {
	Kind Kind
	ID   string
}

func (e *ArtifactIntegrityError) Error() string {
	return fmt.Sprintf("artifact integrity: %s form %q recorded but never issued", e.Kind, e.ID)
}

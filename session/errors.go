package session

import "errors"

var (
	// ErrDateRequired is returned when a date must be chosen but there is
	// no way to ask the operator.
	ErrDateRequired = errors.New("a date is required")

	// ErrAlreadyHeld is returned when holding a session that already has
	// a class form.
	ErrAlreadyHeld = errors.New("session already held")

	// ErrNotPending is returned when marking a session with no class form
	// awaiting responses.
	ErrNotPending = errors.New("no class form is awaiting responses for that session")

	// ErrUnknownStudent is returned when an email is not on the roster.
	ErrUnknownStudent = errors.New("student not on roster")
)

// Package forms talks to the service that collects responses from
// students. The Service interface is what the rest of cohort depends on;
// Local is a directory-backed implementation used by the CLI and tests.
package forms

import (
	"context"
	"errors"
	"time"

	"github.com/amonks/cohort/schedule"
)

var (
	// ErrFormNotFound is returned when a form ID is unknown to the service.
	ErrFormNotFound = errors.New("form not found")

	// ErrNotPublished is returned when responses are submitted to a form
	// that has not been published.
	ErrNotPublished = errors.New("form is not published")
)

// Spec describes a form to create.
type Spec struct {
	Kind        string
	Title       string
	Description string
	Date        schedule.Date
	Questions   []string
}

// Form is a created form as the service reports it.
type Form struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Date        schedule.Date `json:"date"`
	Questions   []string      `json:"questions,omitempty"`
	URL         string        `json:"url"`
	Published   bool          `json:"published"`
	SharedWith  []string      `json:"sharedWith,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Response is one submitted row. Values are kept as the student entered
// them; callers parse the ones they need.
type Response struct {
	Email   string            `json:"email"`
	Name    string            `json:"name,omitempty"`
	Status  string            `json:"status,omitempty"`
	Weekday string            `json:"weekday,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Service creates forms and returns what students submitted.
type Service interface {
	CreateForm(ctx context.Context, spec Spec) (Form, error)
	PublishForm(ctx context.Context, id string) error
	ShareForm(ctx context.Context, id string, recipients []string) error
	FetchResponses(ctx context.Context, id string) ([]Response, error)
}

package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/amonks/cohort/internal/state"
	internalstrings "github.com/amonks/cohort/internal/strings"
	"github.com/google/uuid"
)

const (
	formFile      = "form.json"
	responsesFile = "responses.json"
)

// Local stores each form in its own directory: form.json holds the
// metadata and responses.json the submitted rows.
type Local struct {
	dir string
	now func() time.Time
}

// NewLocal returns a form service rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{dir: dir, now: time.Now}
}

// Dir returns the root directory.
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) formDir(id string) string {
	return filepath.Join(l.dir, id)
}

// CreateForm writes a new form with a random ID.
func (l *Local) CreateForm(ctx context.Context, spec Spec) (Form, error) {
	if err := ctx.Err(); err != nil {
		return Form{}, err
	}
	if internalstrings.NormalizeWhitespace(spec.Title) == "" {
		return Form{}, fmt.Errorf("form title is required")
	}

	id := uuid.NewString()
	dir := l.formDir(id)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Form{}, fmt.Errorf("resolve form dir: %w", err)
	}

	form := Form{
		ID:          id,
		Kind:        spec.Kind,
		Title:       internalstrings.NormalizeWhitespace(spec.Title),
		Description: spec.Description,
		Date:        spec.Date,
		Questions:   append([]string(nil), spec.Questions...),
		URL:         (&url.URL{Scheme: "file", Path: abs}).String(),
		CreatedAt:   l.now().UTC().Truncate(time.Second),
	}
	if err := l.writeForm(form); err != nil {
		return Form{}, err
	}
	return form, nil
}

// PublishForm opens a form for responses.
func (l *Local) PublishForm(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.updateForm(id, func(form *Form) {
		form.Published = true
	})
}

// ShareForm records who the form was sent to. Recipients are deduplicated
// case-insensitively.
func (l *Local) ShareForm(ctx context.Context, id string, recipients []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.updateForm(id, func(form *Form) {
		seen := make(map[string]bool, len(form.SharedWith))
		for _, r := range form.SharedWith {
			seen[internalstrings.NormalizeLowerTrimSpace(r)] = true
		}
		for _, r := range recipients {
			key := internalstrings.NormalizeLowerTrimSpace(r)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			form.SharedWith = append(form.SharedWith, key)
		}
	})
}

// FetchResponses returns the rows submitted so far. A form nobody has
// answered returns no rows.
func (l *Local) FetchResponses(ctx context.Context, id string) ([]Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := l.Form(id); err != nil {
		return nil, err
	}
	return l.readResponses(id)
}

// AddResponse appends a submitted row to a published form.
func (l *Local) AddResponse(id string, response Response) error {
	form, err := l.Form(id)
	if err != nil {
		return err
	}
	if !form.Published {
		return fmt.Errorf("%w: %s", ErrNotPublished, id)
	}
	response.Email = internalstrings.NormalizeLowerTrimSpace(response.Email)
	if response.Email == "" {
		return fmt.Errorf("response email is required")
	}

	responses, err := l.readResponses(id)
	if err != nil {
		return err
	}
	responses = append(responses, response)
	return l.writeJSON(id, responsesFile, responses)
}

// Form returns a form's metadata.
func (l *Local) Form(id string) (Form, error) {
	if id == "" || filepath.Base(id) != id {
		return Form{}, fmt.Errorf("%w: %q", ErrFormNotFound, id)
	}
	data, err := os.ReadFile(filepath.Join(l.formDir(id), formFile))
	if os.IsNotExist(err) {
		return Form{}, fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	if err != nil {
		return Form{}, fmt.Errorf("read form: %w", err)
	}
	var form Form
	if err := json.Unmarshal(data, &form); err != nil {
		return Form{}, fmt.Errorf("parse form %s: %w", id, err)
	}
	return form, nil
}

// List returns every form, oldest first.
func (l *Local) List() ([]Form, error) {
	entries, err := os.ReadDir(l.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read forms dir: %w", err)
	}

	var out []Form
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		form, err := l.Form(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, form)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (l *Local) updateForm(id string, fn func(form *Form)) error {
	form, err := l.Form(id)
	if err != nil {
		return err
	}
	fn(&form)
	return l.writeForm(form)
}

func (l *Local) writeForm(form Form) error {
	return l.writeJSON(form.ID, formFile, form)
}

func (l *Local) readResponses(id string) ([]Response, error) {
	data, err := os.ReadFile(filepath.Join(l.formDir(id), responsesFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	var responses []Response
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("parse responses for %s: %w", id, err)
	}
	return responses, nil
}

func (l *Local) writeJSON(id, name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	dir := l.formDir(id)
	if _, err := state.WriteFileIfChanged(dir, filepath.Join(dir, name), append(data, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

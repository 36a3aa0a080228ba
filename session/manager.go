// Package session carries out the operator's actions against one cohort:
// it loads the ledger, roster, and global record, changes them together,
// and saves them before returning.
package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/amonks/cohort/attendance"
	"github.com/amonks/cohort/forms"
	"github.com/amonks/cohort/globalrecord"
	"github.com/amonks/cohort/internal/prompt"
	"github.com/amonks/cohort/internal/state"
	"github.com/amonks/cohort/ledger"
	"github.com/amonks/cohort/roster"
	"github.com/amonks/cohort/schedule"
	"go.uber.org/zap"
)

const (
	// RosterFile is the roster workbook's name inside the state directory
	// when no path is configured.
	RosterFile = "roster.xlsx"

	// FormsDir is the local form service's directory inside the state
	// directory when none is configured.
	FormsDir = "forms"
)

// Options configures the session manager.
type Options struct {
	StateDir string

	// RosterPath defaults to roster.xlsx in StateDir.
	RosterPath string

	// Forms defaults to a local service under StateDir/forms.
	Forms forms.Service

	// Selector asks which dates to act on when none is given. Without
	// one, such operations fail with ErrDateRequired.
	Selector prompt.DateSelector

	Logger *zap.Logger
}

// Manager coordinates the ledger with its collaborators.
type Manager struct {
	store      *ledger.Store
	rosterPath string
	forms      forms.Service
	selector   prompt.DateSelector
	log        *zap.Logger
}

// Open creates a manager for the cohort in opts.StateDir.
func Open(opts Options) (*Manager, error) {
	if opts.StateDir == "" {
		return nil, fmt.Errorf("state directory is required")
	}
	rosterPath := opts.RosterPath
	if rosterPath == "" {
		rosterPath = filepath.Join(opts.StateDir, RosterFile)
	}
	service := opts.Forms
	if service == nil {
		service = forms.NewLocal(filepath.Join(opts.StateDir, FormsDir))
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:      ledger.NewStore(opts.StateDir),
		rosterPath: rosterPath,
		forms:      service,
		selector:   opts.Selector,
		log:        logger,
	}, nil
}

// StateDir returns the directory holding the ledger and global record.
func (m *Manager) StateDir() string {
	return m.store.Dir()
}

// RosterPath returns the roster workbook location.
func (m *Manager) RosterPath() string {
	return m.rosterPath
}

// run is everything one operation reads and writes.
type run struct {
	ledger *ledger.Ledger
	roster *roster.Workbook
	global *globalrecord.Record
	dates  []schedule.Date
}

func (m *Manager) globalPath() string {
	return filepath.Join(m.store.Dir(), globalrecord.FileName)
}

// update runs fn against a configured ledger and saves the roster, the
// global record, and the ledger if it succeeds.
func (m *Manager) update(fn func(r *run) error) error {
	return m.store.Update(func(l *ledger.Ledger) error {
		if !l.Configured() {
			return ledger.ErrNotConfigured
		}
		return m.within(l, fn)
	})
}

// view loads a configured ledger for reading. Nothing is saved.
func (m *Manager) view() (*ledger.Ledger, error) {
	l, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if !l.Configured() {
		return nil, ledger.ErrNotConfigured
	}
	if err := l.Refresh(); err != nil {
		return nil, err
	}
	return l, nil
}

func (m *Manager) within(l *ledger.Ledger, fn func(r *run) error) error {
	dates, err := l.Dates()
	if err != nil {
		return err
	}
	wb, err := roster.OpenWorkbook(m.rosterPath)
	if err != nil {
		return err
	}
	global, err := globalrecord.Load(m.globalPath(), dates)
	if err != nil {
		return err
	}

	r := &run{ledger: l, roster: wb, global: global, dates: dates}
	if err := fn(r); err != nil {
		return err
	}

	// An interlude can move dates into the schedule.
	if dates, err = l.Dates(); err != nil {
		return err
	}
	global.Track(dates)

	if err := wb.Save(); err != nil {
		return err
	}
	return global.Save()
}

// InitOptions seeds a cohort's schedule.
type InitOptions struct {
	Cohort      int
	Orientation schedule.Date
	ClassDays   schedule.ClassDays
	Weeks       int
}

// Init configures the cohort's schedule and gives the roster one column
// per session. Columns for dates no longer scheduled are removed. It fails
// once any session has been held.
func (m *Manager) Init(opts InitOptions) ([]schedule.Date, error) {
	var dates []schedule.Date
	err := m.store.Update(func(l *ledger.Ledger) error {
		if err := l.Configure(opts.Cohort, opts.Orientation, opts.ClassDays, opts.Weeks); err != nil {
			return err
		}
		return m.within(l, func(r *run) error {
			for _, col := range r.roster.DateColumns() {
				if schedule.Contains(r.dates, col) {
					continue
				}
				if err := r.roster.DropColumn(col); err != nil {
					return err
				}
				m.log.Info("roster.column_dropped", zap.Stringer("date", col))
			}
			if _, err := roster.EnsureColumns(r.roster, r.dates); err != nil {
				return err
			}
			dates = r.dates
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("ledger.configured",
		zap.Int("cohort", opts.Cohort),
		zap.Stringer("orientation", opts.Orientation),
		zap.Stringer("class_days", opts.ClassDays),
		zap.Int("weeks", opts.Weeks),
		zap.Int("sessions", len(dates)),
	)
	return dates, nil
}

// selectDates returns date when it is set, checking that it is a
// candidate, and otherwise asks the selector to choose among candidates.
func (m *Manager) selectDates(title string, date schedule.Date, candidates []schedule.Date, notCandidate error) ([]schedule.Date, error) {
	if !date.IsZero() {
		if !schedule.Contains(candidates, date) {
			return nil, fmt.Errorf("%w: %s", notCandidate, date)
		}
		return []schedule.Date{date}, nil
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	if m.selector == nil {
		return nil, ErrDateRequired
	}
	return m.selector.SelectDates(title, candidates)
}

func requireScheduled(r *run, date schedule.Date) error {
	if !schedule.Contains(r.dates, date) {
		return fmt.Errorf("%w: %s", ledger.ErrNotScheduled, date)
	}
	return nil
}

// issue creates, publishes, and shares a form and registers it.
func (m *Manager) issue(ctx context.Context, r *run, kind ledger.Kind, spec forms.Spec) (ledger.Artifact, error) {
	spec.Kind = string(kind)
	form, err := m.forms.CreateForm(ctx, spec)
	if err != nil {
		return ledger.Artifact{}, fmt.Errorf("create %s form: %w", kind, err)
	}
	if err := m.forms.PublishForm(ctx, form.ID); err != nil {
		return ledger.Artifact{}, fmt.Errorf("publish form %s: %w", form.ID, err)
	}

	students := r.roster.Students()
	recipients := make([]string, 0, len(students))
	for _, s := range students {
		recipients = append(recipients, s.Email)
	}
	if len(recipients) > 0 {
		if err := m.forms.ShareForm(ctx, form.ID, recipients); err != nil {
			return ledger.Artifact{}, fmt.Errorf("share form %s: %w", form.ID, err)
		}
	}

	artifact := ledger.Artifact{ID: form.ID, Title: form.Title, URL: form.URL, Date: form.Date}
	if _, err := r.ledger.RegisterArtifact(kind, artifact); err != nil {
		return ledger.Artifact{}, err
	}
	m.log.Info("artifact.issued",
		zap.String("kind", string(kind)),
		zap.String("artifact", artifact.ID),
		zap.Stringer("date", artifact.Date),
		zap.Int("recipients", len(recipients)),
	)
	return artifact, nil
}

// record marks an artifact's responses as consumed.
func (m *Manager) record(r *run, kind ledger.Kind, artifact ledger.Artifact, applied int) {
	r.ledger.RegisterRecorded(kind, artifact)
	m.log.Info("artifact.recorded",
		zap.String("kind", string(kind)),
		zap.String("artifact", artifact.ID),
		zap.Stringer("date", artifact.Date),
		zap.Int("applied", applied),
	)
}

// Recorded summarises the responses consumed from one form.
type Recorded struct {
	Artifact ledger.Artifact `json:"artifact"`

	// Applied counts responses merged for a class form, cells changed for
	// a CDS form, and students added for an update form.
	Applied int `json:"applied"`

	// Unknown lists respondents missing from the roster.
	Unknown []string `json:"unknown,omitempty"`
}

// HoldClass issues the attendance form for a session and marks it held.
// With a zero date the operator chooses among the unheld sessions. Each
// session is committed as soon as its form is issued, so a failure part
// way through keeps the sessions already held and returns them with the
// error.
func (m *Manager) HoldClass(ctx context.Context, date schedule.Date) ([]ledger.Artifact, error) {
	l, err := m.view()
	if err != nil {
		return nil, err
	}
	if !date.IsZero() {
		if ok, err := l.IsScheduled(date); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("%w: %s", ledger.ErrNotScheduled, date)
		}
	}
	unheld, err := l.UnheldDates()
	if err != nil {
		return nil, err
	}
	dates, err := m.selectDates("Which sessions are being held?", date, unheld, ErrAlreadyHeld)
	if err != nil {
		return nil, err
	}

	var issued []ledger.Artifact
	for _, d := range dates {
		artifact, err := m.holdOne(ctx, d)
		if err != nil {
			return issued, err
		}
		issued = append(issued, artifact)
	}
	return issued, nil
}

func (m *Manager) holdOne(ctx context.Context, d schedule.Date) (ledger.Artifact, error) {
	var artifact ledger.Artifact
	err := m.update(func(r *run) error {
		if r.ledger.IsHeld(d) {
			return fmt.Errorf("%w: %s", ErrAlreadyHeld, d)
		}
		if _, err := roster.EnsureColumns(r.roster, []schedule.Date{d}); err != nil {
			return err
		}
		var err error
		artifact, err = m.issue(ctx, r, ledger.KindClass, forms.Spec{
			Title:       fmt.Sprintf("Cohort %d attendance %s", r.ledger.Cohort(), d),
			Description: fmt.Sprintf("Attendance for the %s session on %s.", d.Weekday(), d),
			Date:        d,
			Questions:   []string{"email", "status"},
		})
		if err != nil {
			return err
		}
		if err := r.ledger.MarkHeld(d); err != nil {
			return err
		}
		m.log.Info("ledger.held", zap.Stringer("date", d), zap.String("artifact", artifact.ID))
		return nil
	})
	return artifact, err
}

// MarkClass merges the responses to held sessions' class forms into the
// roster. Students who did not respond get the global record's value for
// the date, or Absent. With a zero date the operator chooses among the
// sessions awaiting responses.
func (m *Manager) MarkClass(ctx context.Context, date schedule.Date) ([]Recorded, error) {
	var results []Recorded
	err := m.update(func(r *run) error {
		if !date.IsZero() {
			if err := requireScheduled(r, date); err != nil {
				return err
			}
		}
		dates, err := m.selectDates("Which sessions should be marked?", date, r.ledger.UnrecordedHeldDates(), ErrNotPending)
		if err != nil {
			return err
		}

		for _, d := range dates {
			for _, artifact := range r.ledger.AvailableArtifacts(ledger.KindClass) {
				if artifact.Date != d {
					continue
				}
				result, err := m.markOne(ctx, r, artifact)
				if err != nil {
					return err
				}
				results = append(results, result)
			}
			if err := r.ledger.MarkMarked(d); err != nil {
				return err
			}
			m.log.Info("ledger.marked", zap.Stringer("date", d))
		}
		return nil
	})
	return results, err
}

func (m *Manager) markOne(ctx context.Context, r *run, artifact ledger.Artifact) (Recorded, error) {
	rows, err := m.forms.FetchResponses(ctx, artifact.ID)
	if err != nil {
		return Recorded{}, fmt.Errorf("fetch responses for %s: %w", artifact.Date, err)
	}

	result := Recorded{Artifact: artifact}
	responses := make(map[int]attendance.Status, len(rows))
	for _, row := range rows {
		idx, ok := r.roster.IndexOf(row.Email)
		if !ok {
			result.Unknown = append(result.Unknown, row.Email)
			continue
		}
		status, err := attendance.ParseStatus(row.Status)
		if err != nil {
			return Recorded{}, fmt.Errorf("response from %s: %w", row.Email, err)
		}
		if status.IsEmpty() {
			continue
		}
		responses[idx] = status
	}
	result.Applied = len(responses)

	if _, err := roster.EnsureColumns(r.roster, []schedule.Date{artifact.Date}); err != nil {
		return Recorded{}, err
	}
	fallback := r.global.Resolve(artifact.Date, attendance.StatusAbsent)
	if err := attendance.ApplyResponses(r.roster, artifact.Date, responses, fallback); err != nil {
		return Recorded{}, err
	}
	if len(result.Unknown) > 0 {
		m.log.Warn("responses from unknown students",
			zap.Stringer("date", artifact.Date),
			zap.Strings("emails", result.Unknown),
		)
	}
	m.record(r, ledger.KindClass, artifact, result.Applied)
	return result, nil
}

// IssueCDSForm issues a form asking each student for their CDS weekday.
func (m *Manager) IssueCDSForm(ctx context.Context) (ledger.Artifact, error) {
	var artifact ledger.Artifact
	err := m.update(func(r *run) error {
		var err error
		artifact, err = m.issue(ctx, r, ledger.KindCDS, forms.Spec{
			Title:       fmt.Sprintf("Cohort %d CDS day", r.ledger.Cohort()),
			Description: fmt.Sprintf("Choose your CDS day (%s).", r.ledger.ClassDays()),
			Questions:   []string{"email", "weekday"},
		})
		return err
	})
	return artifact, err
}

// RecordCDS applies every outstanding CDS form: each respondent's
// sessions on their chosen weekday become CDS.
func (m *Manager) RecordCDS(ctx context.Context) ([]Recorded, error) {
	var results []Recorded
	err := m.update(func(r *run) error {
		if _, err := roster.EnsureColumns(r.roster, r.dates); err != nil {
			return err
		}
		classDays := r.ledger.ClassDays()
		for _, artifact := range r.ledger.AvailableArtifacts(ledger.KindCDS) {
			rows, err := m.forms.FetchResponses(ctx, artifact.ID)
			if err != nil {
				return fmt.Errorf("fetch CDS responses: %w", err)
			}
			result := Recorded{Artifact: artifact}
			for _, row := range rows {
				idx, ok := r.roster.IndexOf(row.Email)
				if !ok {
					result.Unknown = append(result.Unknown, row.Email)
					continue
				}
				weekday, err := schedule.ParseWeekday(row.Weekday)
				if err != nil {
					return fmt.Errorf("CDS response from %s: %w", row.Email, err)
				}
				if !classDays.Contains(weekday) {
					m.log.Warn("CDS day is not a class day",
						zap.String("email", row.Email),
						zap.Stringer("weekday", weekday),
					)
					continue
				}
				changed, err := attendance.ApplyCDS(r.roster, r.dates, idx, weekday)
				if err != nil {
					return err
				}
				result.Applied += changed
			}
			m.record(r, ledger.KindCDS, artifact, result.Applied)
			results = append(results, result)
		}
		return nil
	})
	return results, err
}

// IssueUpdateForm issues an onboarding form collecting student details.
func (m *Manager) IssueUpdateForm(ctx context.Context) (ledger.Artifact, error) {
	var artifact ledger.Artifact
	err := m.update(func(r *run) error {
		var err error
		artifact, err = m.issue(ctx, r, ledger.KindUpdate, forms.Spec{
			Title:       fmt.Sprintf("Cohort %d student details", r.ledger.Cohort()),
			Description: "Tell us who you are so we can add you to the roster.",
			Questions:   []string{"email", "name"},
		})
		return err
	})
	return artifact, err
}

// RecordUpdates adds every respondent of the outstanding update forms who
// is not yet on the roster.
func (m *Manager) RecordUpdates(ctx context.Context) ([]Recorded, error) {
	var results []Recorded
	err := m.update(func(r *run) error {
		for _, artifact := range r.ledger.AvailableArtifacts(ledger.KindUpdate) {
			rows, err := m.forms.FetchResponses(ctx, artifact.ID)
			if err != nil {
				return fmt.Errorf("fetch update responses: %w", err)
			}
			result := Recorded{Artifact: artifact}
			for _, row := range rows {
				if _, ok := r.roster.IndexOf(row.Email); ok {
					continue
				}
				name := row.Name
				if name == "" {
					name = row.Fields["name"]
				}
				if _, err := r.roster.AddStudent(roster.Student{Name: name, Email: row.Email}); err != nil {
					return err
				}
				m.log.Info("roster.student_added", zap.String("email", row.Email))
				result.Applied++
			}
			m.record(r, ledger.KindUpdate, artifact, result.Applied)
			results = append(results, result)
		}
		return nil
	})
	return results, err
}

// EditAll merges status into every student's cell for a session.
func (m *Manager) EditAll(date schedule.Date, status attendance.Status) error {
	return m.update(func(r *run) error {
		if err := requireScheduled(r, date); err != nil {
			return err
		}
		if _, err := roster.EnsureColumns(r.roster, []schedule.Date{date}); err != nil {
			return err
		}
		if err := attendance.EditAll(r.roster, date, status); err != nil {
			return err
		}
		m.log.Info("attendance.edited", zap.Stringer("date", date), zap.String("status", string(status)))
		return nil
	})
}

// EditCell overwrites one student's cell for a session.
func (m *Manager) EditCell(date schedule.Date, email string, status attendance.Status) error {
	return m.update(func(r *run) error {
		if err := requireScheduled(r, date); err != nil {
			return err
		}
		idx, ok := r.roster.IndexOf(email)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownStudent, email)
		}
		if _, err := roster.EnsureColumns(r.roster, []schedule.Date{date}); err != nil {
			return err
		}
		if err := attendance.EditCell(r.roster, date, idx, status); err != nil {
			return err
		}
		m.log.Info("attendance.edited",
			zap.Stringer("date", date),
			zap.String("email", email),
			zap.String("status", string(status)),
		)
		return nil
	})
}

// CancelClass records that a session did not run: the global record
// holds NoClass for the date and every student's cell becomes NoClass.
func (m *Manager) CancelClass(date schedule.Date) error {
	return m.update(func(r *run) error {
		if err := requireScheduled(r, date); err != nil {
			return err
		}
		if err := r.global.Set(date, attendance.StatusNoClass); err != nil {
			return err
		}
		if _, err := roster.EnsureColumns(r.roster, []schedule.Date{date}); err != nil {
			return err
		}
		if err := attendance.EditAll(r.roster, date, attendance.StatusNoClass); err != nil {
			return err
		}
		m.log.Info("class.cancelled", zap.Stringer("date", date))
		return nil
	})
}

// InterludeOptions describes a pause: resume on Resume, or after Shift
// days when Resume is zero.
type InterludeOptions struct {
	Anchor schedule.Date
	Resume schedule.Date
	Shift  int
}

// Interlude pauses the schedule at the anchor and relabels the roster's
// date columns to match the new sessions.
func (m *Manager) Interlude(opts InterludeOptions) (ledger.Remap, error) {
	var (
		in  schedule.Interlude
		err error
	)
	if !opts.Resume.IsZero() {
		in, err = schedule.NewResumeInterlude(opts.Anchor, opts.Resume)
	} else {
		in, err = schedule.NewShiftInterlude(opts.Anchor, opts.Shift)
	}
	if err != nil {
		return ledger.Remap{}, err
	}

	var remap ledger.Remap
	err = m.update(func(r *run) error {
		var err error
		remap, err = r.ledger.ApplyInterlude(r.roster, in)
		return err
	})
	if err != nil {
		return ledger.Remap{}, err
	}
	m.log.Info("interlude.applied",
		zap.Stringer("start", in.Start),
		zap.Stringer("end", in.End),
		zap.Int("shift", in.Shift),
		zap.Int("renamed", len(remap.Renamed)),
		zap.Int("dropped", len(remap.Dropped)),
		zap.Int("added", len(remap.Added)),
	)
	return remap, nil
}

// AddStudent appends a student to the roster. The cohort does not need
// to be configured.
func (m *Manager) AddStudent(name, email string) (roster.Student, error) {
	unlock, err := state.Lock(m.store.Dir())
	if err != nil {
		return roster.Student{}, err
	}
	defer unlock()

	wb, err := roster.OpenWorkbook(m.rosterPath)
	if err != nil {
		return roster.Student{}, err
	}
	idx, err := wb.AddStudent(roster.Student{Name: name, Email: email})
	if err != nil {
		return roster.Student{}, err
	}
	if err := wb.Save(); err != nil {
		return roster.Student{}, err
	}
	student := wb.Students()[idx]
	m.log.Info("roster.student_added", zap.String("email", student.Email))
	return student, nil
}

// Students returns the roster's students in row order.
func (m *Manager) Students() ([]roster.Student, error) {
	wb, err := roster.OpenWorkbook(m.rosterPath)
	if err != nil {
		return nil, err
	}
	return wb.Students(), nil
}

// Mark is one student's cell for a session.
type Mark struct {
	Student roster.Student    `json:"student"`
	Status  attendance.Status `json:"status"`
}

// Attendance returns every student's cell for a session. A session with
// no roster column yet reads as Empty throughout.
func (m *Manager) Attendance(date schedule.Date) ([]Mark, error) {
	l, err := m.view()
	if err != nil {
		return nil, err
	}
	if ok, err := l.IsScheduled(date); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotScheduled, date)
	}

	wb, err := roster.OpenWorkbook(m.rosterPath)
	if err != nil {
		return nil, err
	}
	var column []attendance.Status
	if wb.HasColumn(date) {
		if column, err = wb.GetColumn(date); err != nil {
			return nil, err
		}
	}
	students := wb.Students()
	marks := make([]Mark, len(students))
	for i, s := range students {
		marks[i] = Mark{Student: s}
		if column != nil {
			marks[i].Status = column[i]
		}
	}
	return marks, nil
}

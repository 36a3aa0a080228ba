// Package ledger records the state of a cohort's course: its schedule,
// which sessions have had a form generated (held) and had responses merged
// (marked), and which collection forms have been issued and recorded.
//
// A ledger loaded from disk must be refreshed before anything that depends
// on the session dates is used; until then those operations return
// ErrNotUpdated.
package ledger

import (
	"fmt"
	"os"
	"sort"

	"github.com/amonks/cohort/internal/validation"
	"github.com/amonks/cohort/schedule"
)

// MinWeeks is the shortest course a ledger accepts.
const MinWeeks = 2

// ReportKind names a report the course produces.
type ReportKind string

const (
	ReportAttendance ReportKind = "attendance"
	ReportAssessment ReportKind = "assessment"
	ReportProject    ReportKind = "project"
	ReportResult     ReportKind = "result"
	ReportMerit      ReportKind = "merit"
)

// ValidReportKinds returns all report kinds.
func ValidReportKinds() []ReportKind {
	return []ReportKind{ReportAttendance, ReportAssessment, ReportProject, ReportResult, ReportMerit}
}

// IsValid returns true if the report kind is a known value.
func (k ReportKind) IsValid() bool {
	for _, valid := range ValidReportKinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// Ledger is the record of one cohort. The zero value is not usable; use New.
type Ledger struct {
	cohort      int
	classDays   schedule.ClassDays
	orientation schedule.Date
	weeks       int
	interlude   *schedule.Interlude

	dates   []schedule.Date
	updated bool

	held   dateSet
	marked dateSet

	registries map[Kind]*registry
	reports    map[ReportKind]string
}

// New returns an empty, unconfigured ledger.
func New() *Ledger {
	l := &Ledger{
		held:       newDateSet(),
		marked:     newDateSet(),
		registries: make(map[Kind]*registry, len(ValidKinds())),
		reports:    make(map[ReportKind]string),
	}
	for _, kind := range ValidKinds() {
		l.registries[kind] = newRegistry(kind)
	}
	return l
}

// Configure sets the cohort's schedule and recomputes its dates. Nothing
// changes if any input is invalid. The schedule cannot be replaced once a
// session has been held; use an interlude instead.
func (l *Ledger) Configure(cohort int, orientation schedule.Date, classDays schedule.ClassDays, weeks int) error {
	if weeks < MinWeeks {
		return fmt.Errorf("%w: a course runs at least %d weeks, got %d", schedule.ErrConfig, MinWeeks, weeks)
	}
	if cohort < 0 {
		return fmt.Errorf("%w: cohort number cannot be negative", schedule.ErrConfig)
	}
	if l.held.len() > 0 {
		return ErrScheduleLocked
	}
	dates, err := schedule.Generate(orientation, classDays, weeks)
	if err != nil {
		return err
	}

	l.cohort = cohort
	l.orientation = orientation
	l.classDays = append(schedule.ClassDays(nil), classDays...)
	l.weeks = weeks
	l.interlude = nil
	l.dates = dates
	l.updated = true
	return nil
}

// Configured reports whether a schedule has been set.
func (l *Ledger) Configured() bool {
	return !l.orientation.IsZero() && len(l.classDays) > 0 && l.weeks > 0
}

// Refresh recomputes the session dates from the schedule and interlude.
func (l *Ledger) Refresh() error {
	if !l.Configured() {
		return ErrNotConfigured
	}
	full, err := schedule.Generate(l.orientation, l.classDays, l.weeks)
	if err != nil {
		return err
	}
	if l.interlude != nil {
		full = schedule.Splice(full, *l.interlude)
	}
	l.dates = full
	l.updated = true
	return nil
}

// Updated reports whether the cached dates are current.
func (l *Ledger) Updated() bool {
	return l.updated
}

func (l *Ledger) requireUpdated() error {
	if !l.updated {
		return ErrNotUpdated
	}
	return nil
}

// Cohort returns the cohort number, 0 when unset.
func (l *Ledger) Cohort() int { return l.cohort }

// ClassDays returns the weekly class pattern.
func (l *Ledger) ClassDays() schedule.ClassDays {
	return append(schedule.ClassDays(nil), l.classDays...)
}

// Orientation returns the orientation date.
func (l *Ledger) Orientation() schedule.Date { return l.orientation }

// Weeks returns the course length in weeks.
func (l *Ledger) Weeks() int { return l.weeks }

// Interlude returns the interlude in effect, if any.
func (l *Ledger) Interlude() (schedule.Interlude, bool) {
	if l.interlude == nil {
		return schedule.Interlude{}, false
	}
	return *l.interlude, true
}

// Dates returns every session date in order.
func (l *Ledger) Dates() ([]schedule.Date, error) {
	if err := l.requireUpdated(); err != nil {
		return nil, err
	}
	return append([]schedule.Date(nil), l.dates...), nil
}

// IsScheduled reports whether date is a session date.
func (l *Ledger) IsScheduled(date schedule.Date) (bool, error) {
	if err := l.requireUpdated(); err != nil {
		return false, err
	}
	return schedule.Contains(l.dates, date), nil
}

func (l *Ledger) requireScheduled(date schedule.Date) error {
	ok, err := l.IsScheduled(date)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotScheduled, date)
	}
	return nil
}

// MarkHeld records that a form has been generated for date.
func (l *Ledger) MarkHeld(date schedule.Date) error {
	if err := l.requireScheduled(date); err != nil {
		return err
	}
	l.held.add(date)
	return nil
}

// MarkMarked records that responses for date have been merged into the roster.
func (l *Ledger) MarkMarked(date schedule.Date) error {
	if err := l.requireScheduled(date); err != nil {
		return err
	}
	l.marked.add(date)
	return nil
}

// IsHeld reports whether a form has been generated for date.
func (l *Ledger) IsHeld(date schedule.Date) bool {
	return l.held.has(date)
}

// IsMarked reports whether responses for date have been recorded.
func (l *Ledger) IsMarked(date schedule.Date) bool {
	return l.marked.has(date)
}

// HeldDates returns the held sessions in date order.
func (l *Ledger) HeldDates() []schedule.Date {
	return l.held.sorted()
}

// MarkedDates returns the marked sessions in date order.
func (l *Ledger) MarkedDates() []schedule.Date {
	return l.marked.sorted()
}

// UnheldDates returns the session dates with no form generated yet.
func (l *Ledger) UnheldDates() ([]schedule.Date, error) {
	if err := l.requireUpdated(); err != nil {
		return nil, err
	}
	var out []schedule.Date
	for _, date := range l.dates {
		if !l.held.has(date) {
			out = append(out, date)
		}
	}
	return out, nil
}

// UnmarkedDates returns held sessions whose responses are not recorded.
func (l *Ledger) UnmarkedDates() []schedule.Date {
	var out []schedule.Date
	for _, date := range l.held.sorted() {
		if !l.marked.has(date) {
			out = append(out, date)
		}
	}
	return out
}

// UnrecordedHeldDates returns the held sessions whose responses have not
// been marked, whether or not their class form is still available.
func (l *Ledger) UnrecordedHeldDates() []schedule.Date {
	return l.UnmarkedDates()
}

func (l *Ledger) registry(kind Kind) *registry {
	r, ok := l.registries[kind]
	if !ok {
		panic(fmt.Sprintf("ledger: unknown artifact kind %q", kind))
	}
	return r
}

// RegisterArtifact records that a form of the given kind was issued. It
// reports false if an artifact with the same ID was already issued.
func (l *Ledger) RegisterArtifact(kind Kind, a Artifact) (bool, error) {
	if !kind.IsValid() {
		return false, validation.FormatInvalidValueError(ErrUnknownKind, kind, ValidKinds())
	}
	if a.ID == "" {
		return false, fmt.Errorf("artifact ID is required")
	}
	return l.registry(kind).issue(a), nil
}

// RegisterRecorded records that responses to an issued form were consumed.
// Recording an artifact that was never issued panics with an
// *ArtifactIntegrityError. It reports false if it was already recorded.
func (l *Ledger) RegisterRecorded(kind Kind, a Artifact) bool {
	return l.registry(kind).record(a.ID)
}

// IsIssued reports whether an artifact ID has been issued for kind.
func (l *Ledger) IsIssued(kind Kind, id string) bool {
	return l.registry(kind).isIssued(id)
}

// IsRecorded reports whether an artifact ID has been recorded for kind.
func (l *Ledger) IsRecorded(kind Kind, id string) bool {
	return l.registry(kind).done[id]
}

// Issued returns every issued artifact of kind in issue order.
func (l *Ledger) Issued(kind Kind) []Artifact {
	return append([]Artifact(nil), l.registry(kind).issued...)
}

// Recorded returns every recorded artifact of kind in record order.
func (l *Ledger) Recorded(kind Kind) []Artifact {
	return l.registry(kind).recordedArtifacts()
}

// AvailableArtifacts returns issued artifacts of kind that have not been
// recorded, in issue order.
func (l *Ledger) AvailableArtifacts(kind Kind) []Artifact {
	return l.registry(kind).available()
}

// ArtifactForDate returns the issued artifact of kind for a session date.
func (l *Ledger) ArtifactForDate(kind Kind, date schedule.Date) (Artifact, bool) {
	for _, a := range l.registry(kind).issued {
		if a.Date == date {
			return a, true
		}
	}
	return Artifact{}, false
}

// SetReport records where a report was written.
func (l *Ledger) SetReport(kind ReportKind, path string) error {
	if !kind.IsValid() {
		return validation.FormatInvalidValueError(ErrUnknownKind, kind, ValidReportKinds())
	}
	l.reports[kind] = path
	return nil
}

// Report returns whether a report has been produced and its location.
// A report counts as produced only while its file exists.
func (l *Ledger) Report(kind ReportKind) (bool, string) {
	path := l.reports[kind]
	if path == "" {
		return false, ""
	}
	_, err := os.Stat(path)
	return err == nil, path
}

// dateSet is an insertion-ordered set of dates.
type dateSet struct {
	order []schedule.Date
	index map[schedule.Date]bool
}

func newDateSet() dateSet {
	return dateSet{index: make(map[schedule.Date]bool)}
}

func (s *dateSet) add(date schedule.Date) bool {
	if s.index[date] {
		return false
	}
	s.index[date] = true
	s.order = append(s.order, date)
	return true
}

func (s dateSet) has(date schedule.Date) bool {
	return s.index[date]
}

func (s dateSet) len() int {
	return len(s.order)
}

func (s dateSet) sorted() []schedule.Date {
	out := append([]schedule.Date(nil), s.order...)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amonks/cohort/internal/state"
	"github.com/amonks/cohort/schedule"
)

const (
	// LedgerFile is the name of the persisted ledger.
	LedgerFile = "ledger.json"

	// DatesFile mirrors the session dates, one per line, for date prompts.
	DatesFile = "dates.txt"
)

// Store reads and writes a ledger in a state directory.
type Store struct {
	dir string
}

// NewStore creates a ledger store using the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, LedgerFile)
}

// DatesPath returns the side file path.
func (s *Store) DatesPath() string {
	return filepath.Join(s.dir, DatesFile)
}

// Load reads the ledger from disk. A missing file yields an empty ledger.
// Every field is optional; a present but malformed field fails with a
// *LoadError naming it. The returned ledger has not been refreshed.
func (s *Store) Load() (*Ledger, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}
	return Decode(data)
}

// Save writes the ledger atomically and refreshes the dates side file when
// its content changed.
func (s *Store) Save(l *Ledger) error {
	data, err := Encode(l)
	if err != nil {
		return err
	}
	if _, err := state.WriteFileIfChanged(s.dir, s.Path(), data); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}

	var lines strings.Builder
	for _, date := range l.dates {
		lines.WriteString(date.String())
		lines.WriteByte('\n')
	}
	if _, err := state.WriteFileIfChanged(s.dir, s.DatesPath(), []byte(lines.String())); err != nil {
		return fmt.Errorf("write dates file: %w", err)
	}
	return nil
}

// Update loads and refreshes the ledger under the state directory lock,
// applies fn, and saves the result only if fn succeeds.
func (s *Store) Update(fn func(l *Ledger) error) error {
	unlock, err := state.Lock(s.dir)
	if err != nil {
		return err
	}
	defer unlock()

	l, err := s.Load()
	if err != nil {
		return err
	}
	if l.Configured() {
		if err := l.Refresh(); err != nil {
			return err
		}
	}
	if err := fn(l); err != nil {
		return err
	}
	return s.Save(l)
}

// report is persisted as a [produced, path] pair.
type report struct {
	Produced bool
	Path     string
}

func (r report) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Produced, r.Path})
}

func (r *report) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) != 2 {
		return errors.New("expected a [bool, path] pair")
	}
	if err := json.Unmarshal(pair[0], &r.Produced); err != nil {
		return errors.New("first element must be a bool")
	}
	if err := json.Unmarshal(pair[1], &r.Path); err != nil {
		return errors.New("second element must be a path string")
	}
	return nil
}

type file struct {
	Cohort              *int                `json:"cohort"`
	ClassDays           []int               `json:"classDays"`
	Dates               []schedule.Date     `json:"dates"`
	OrientationDate     schedule.Date       `json:"orientationDate"`
	Weeks               int                 `json:"weeks"`
	Interlude           *schedule.Interlude `json:"interlude"`
	HeldClasses         []schedule.Date     `json:"heldClasses"`
	MarkedClasses       []schedule.Date     `json:"markedClasses"`
	ClassForms          []Artifact          `json:"classForms"`
	RecordedClassForms  []Artifact          `json:"recordedClassForms"`
	CDSForms            []Artifact          `json:"cdsForms"`
	RecordedCDSForms    []Artifact          `json:"recordedCdsForms"`
	UpdateForms         []Artifact          `json:"updateForms"`
	RecordedUpdateForms []Artifact          `json:"recordedUpdateForms"`
	Attendance          report              `json:"attendance"`
	Assessment          report              `json:"assessment"`
	Project             report              `json:"project"`
	Result              report              `json:"result"`
	Merit               report              `json:"merit"`
}

// Encode serializes the ledger in its persisted JSON shape.
func Encode(l *Ledger) ([]byte, error) {
	f := file{
		ClassDays:           make([]int, 0, len(l.classDays)),
		Dates:               nonNilDates(l.dates),
		OrientationDate:     l.orientation,
		Weeks:               l.weeks,
		Interlude:           l.interlude,
		HeldClasses:         nonNilDates(l.held.order),
		MarkedClasses:       nonNilDates(l.marked.order),
		ClassForms:          nonNilArtifacts(l.Issued(KindClass)),
		RecordedClassForms:  nonNilArtifacts(l.Recorded(KindClass)),
		CDSForms:            nonNilArtifacts(l.Issued(KindCDS)),
		RecordedCDSForms:    nonNilArtifacts(l.Recorded(KindCDS)),
		UpdateForms:         nonNilArtifacts(l.Issued(KindUpdate)),
		RecordedUpdateForms: nonNilArtifacts(l.Recorded(KindUpdate)),
	}
	if l.cohort > 0 {
		cohort := l.cohort
		f.Cohort = &cohort
	}
	for _, w := range l.classDays {
		f.ClassDays = append(f.ClassDays, int(w))
	}
	for kind, target := range map[ReportKind]*report{
		ReportAttendance: &f.Attendance,
		ReportAssessment: &f.Assessment,
		ReportProject:    &f.Project,
		ReportResult:     &f.Result,
		ReportMerit:      &f.Merit,
	} {
		produced, path := l.Report(kind)
		*target = report{Produced: produced, Path: path}
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal ledger: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a persisted ledger, validating each field independently.
func Decode(data []byte) (*Ledger, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Field: "(document)", Err: err}
	}

	l := New()
	field := func(name string, target any) (bool, error) {
		value, ok := raw[name]
		if !ok || string(value) == "null" {
			return false, nil
		}
		if err := json.Unmarshal(value, target); err != nil {
			return false, &LoadError{Field: name, Err: err}
		}
		return true, nil
	}

	var cohort int
	if ok, err := field("cohort", &cohort); err != nil {
		return nil, err
	} else if ok && cohort < 0 {
		return nil, &LoadError{Field: "cohort", Err: errors.New("must not be negative")}
	}
	l.cohort = cohort

	var days []int
	if ok, err := field("classDays", &days); err != nil {
		return nil, err
	} else if ok && len(days) > 0 {
		classDays := make(schedule.ClassDays, len(days))
		for i, d := range days {
			classDays[i] = schedule.Weekday(d)
		}
		if err := classDays.Validate(); err != nil {
			return nil, &LoadError{Field: "classDays", Err: err}
		}
		l.classDays = classDays
	}

	if _, err := field("dates", &l.dates); err != nil {
		return nil, err
	}
	if _, err := field("orientationDate", &l.orientation); err != nil {
		return nil, err
	}

	if ok, err := field("weeks", &l.weeks); err != nil {
		return nil, err
	} else if ok && l.weeks != 0 && l.weeks < MinWeeks {
		return nil, &LoadError{Field: "weeks", Err: fmt.Errorf("must be at least %d, got %d", MinWeeks, l.weeks)}
	}

	var in schedule.Interlude
	if ok, err := field("interlude", &in); err != nil {
		return nil, err
	} else if ok {
		l.interlude = &in
	}

	for name, set := range map[string]*dateSet{"heldClasses": &l.held, "markedClasses": &l.marked} {
		var dates []schedule.Date
		if _, err := field(name, &dates); err != nil {
			return nil, err
		}
		for _, d := range dates {
			if d.IsZero() {
				return nil, &LoadError{Field: name, Err: errors.New("null date in list")}
			}
			set.add(d)
		}
	}

	for _, pair := range []struct {
		kind     Kind
		issued   string
		recorded string
	}{
		{KindClass, "classForms", "recordedClassForms"},
		{KindCDS, "cdsForms", "recordedCdsForms"},
		{KindUpdate, "updateForms", "recordedUpdateForms"},
	} {
		reg := l.registry(pair.kind)
		var issued, recorded []Artifact
		if _, err := field(pair.issued, &issued); err != nil {
			return nil, err
		}
		for _, a := range issued {
			if a.ID == "" {
				return nil, &LoadError{Field: pair.issued, Err: errors.New("artifact without id")}
			}
			reg.issue(a)
		}
		if _, err := field(pair.recorded, &recorded); err != nil {
			return nil, err
		}
		for _, a := range recorded {
			if !reg.isIssued(a.ID) {
				return nil, &LoadError{Field: pair.recorded, Err: fmt.Errorf("artifact %q was never issued", a.ID)}
			}
			reg.record(a.ID)
		}
	}

	for _, kind := range ValidReportKinds() {
		var r report
		if _, err := field(string(kind), &r); err != nil {
			return nil, err
		}
		if r.Path != "" {
			l.reports[kind] = r.Path
		}
	}

	return l, nil
}

func nonNilDates(dates []schedule.Date) []schedule.Date {
	if dates == nil {
		return []schedule.Date{}
	}
	return dates
}

func nonNilArtifacts(artifacts []Artifact) []Artifact {
	if artifacts == nil {
		return []Artifact{}
	}
	return artifacts
}

package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/amonks/cohort/attendance"
	"github.com/amonks/cohort/globalrecord"
	"github.com/amonks/cohort/ledger"
	"github.com/amonks/cohort/schedule"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Report is a report's state in a Snapshot.
type Report struct {
	Kind     ledger.ReportKind `json:"kind"`
	Produced bool              `json:"produced"`
	Path     string            `json:"path,omitempty"`
}

// Snapshot is the cohort's reconciliation state: what has been done and
// what is still outstanding.
type Snapshot struct {
	Configured  bool                `json:"configured"`
	Cohort      int                 `json:"cohort"`
	Orientation schedule.Date       `json:"orientation"`
	ClassDays   []string            `json:"classDays"`
	Weeks       int                 `json:"weeks"`
	Interlude   *schedule.Interlude `json:"interlude,omitempty"`
	Students    int                 `json:"students"`

	Dates          []schedule.Date `json:"dates"`
	Held           []schedule.Date `json:"held"`
	Marked         []schedule.Date `json:"marked"`
	Unheld         []schedule.Date `json:"unheld"`
	Unmarked       []schedule.Date `json:"unmarked"`
	UnrecordedHeld []schedule.Date `json:"unrecordedHeld"`
	UnsetGlobal    []schedule.Date `json:"unsetGlobal"`
	Cancelled      []schedule.Date `json:"cancelled"`

	Available map[ledger.Kind][]ledger.Artifact `json:"available"`
	Reports   []Report                          `json:"reports"`
}

// Status reads the cohort without changing it.
func (m *Manager) Status() (Snapshot, error) {
	l, err := m.store.Load()
	if err != nil {
		return Snapshot{}, err
	}
	students, err := m.Students()
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Configured: l.Configured(),
		Cohort:     l.Cohort(),
		Students:   len(students),
		Held:       l.HeldDates(),
		Marked:     l.MarkedDates(),
		Unmarked:   l.UnmarkedDates(),
		Available:  make(map[ledger.Kind][]ledger.Artifact, len(ledger.ValidKinds())),
	}
	for _, kind := range ledger.ValidKinds() {
		snap.Available[kind] = l.AvailableArtifacts(kind)
	}
	for _, kind := range ledger.ValidReportKinds() {
		produced, path := l.Report(kind)
		snap.Reports = append(snap.Reports, Report{Kind: kind, Produced: produced, Path: path})
	}
	if !snap.Configured {
		return snap, nil
	}

	if err := l.Refresh(); err != nil {
		return Snapshot{}, err
	}
	snap.Orientation = l.Orientation()
	snap.Weeks = l.Weeks()
	for _, day := range l.ClassDays() {
		snap.ClassDays = append(snap.ClassDays, day.String())
	}
	if in, ok := l.Interlude(); ok {
		snap.Interlude = &in
	}
	if snap.Dates, err = l.Dates(); err != nil {
		return Snapshot{}, err
	}
	if snap.Unheld, err = l.UnheldDates(); err != nil {
		return Snapshot{}, err
	}
	snap.UnrecordedHeld = l.UnrecordedHeldDates()

	global, err := globalrecord.Load(m.globalPath(), snap.Dates)
	if err != nil {
		return Snapshot{}, err
	}
	snap.UnsetGlobal = global.UnsetDates()
	for _, d := range snap.Dates {
		if status, _ := global.Get(d); status == attendance.StatusNoClass {
			snap.Cancelled = append(snap.Cancelled, d)
		}
	}
	return snap, nil
}

const (
	attendanceSheet = "Attendance"
	sessionsSheet   = "Sessions"
)

var tallyColumns = []attendance.Status{
	attendance.StatusPresent,
	attendance.StatusExcused,
	attendance.StatusCDS,
	attendance.StatusAbsent,
	attendance.StatusNoClass,
}

// ExportAttendance writes a workbook with each student's status counts
// and the state of every session, and records it as the attendance
// report.
func (m *Manager) ExportAttendance(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve export path: %w", err)
	}
	err = m.update(func(r *run) error {
		if err := writeAttendance(abs, r); err != nil {
			return err
		}
		return r.ledger.SetReport(ledger.ReportAttendance, abs)
	})
	if err != nil {
		return "", err
	}
	m.log.Info("report.exported", zap.String("kind", string(ledger.ReportAttendance)), zap.String("path", abs))
	return abs, nil
}

func writeAttendance(path string, r *run) error {
	var dates []schedule.Date
	for _, d := range r.dates {
		if r.roster.HasColumn(d) {
			dates = append(dates, d)
		}
	}
	tallies, err := attendance.Summarize(r.roster, dates)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return fmt.Errorf("name attendance sheet: %w", err)
	}
	header := []any{"Name", "Email"}
	for _, status := range tallyColumns {
		header = append(header, status.Label())
	}
	header = append(header, "Sessions")
	if err := f.SetSheetRow(attendanceSheet, "A1", &header); err != nil {
		return fmt.Errorf("write attendance header: %w", err)
	}
	for i, student := range r.roster.Students() {
		row := []any{student.Name, student.Email}
		for _, status := range tallyColumns {
			row = append(row, tallies[i][status])
		}
		row = append(row, tallies[i].Sessions())
		if err := setRow(f, attendanceSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(sessionsSheet); err != nil {
		return fmt.Errorf("add sessions sheet: %w", err)
	}
	sessionHeader := []any{"Date", "Weekday", "Held", "Marked", "Global"}
	if err := f.SetSheetRow(sessionsSheet, "A1", &sessionHeader); err != nil {
		return fmt.Errorf("write sessions header: %w", err)
	}
	for i, d := range r.dates {
		global, _ := r.global.Get(d)
		row := []any{d.String(), d.Weekday().Short(), r.ledger.IsHeld(d), r.ledger.IsMarked(d), global.Label()}
		if err := setRow(f, sessionsSheet, i+2, row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	for _, sheet := range []string{attendanceSheet, sessionsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
	}
	if err := f.SetColWidth(attendanceSheet, "A", "B", 28); err != nil {
		return fmt.Errorf("size %s columns: %w", attendanceSheet, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write attendance report: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

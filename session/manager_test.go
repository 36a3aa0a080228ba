package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/amonks/cohort/attendance"
	"github.com/amonks/cohort/forms"
	"github.com/amonks/cohort/globalrecord"
	"github.com/amonks/cohort/internal/prompt"
	"github.com/amonks/cohort/ledger"
	"github.com/amonks/cohort/roster"
	"github.com/amonks/cohort/schedule"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func date(s string) schedule.Date {
	return schedule.MustParseDate(s)
}

type harness struct {
	manager *Manager
	forms   *forms.Local
	logs    *observer.ObservedLogs
}

// setupCohort configures cohort 7 (Mon/Wed/Fri from 16/06/2025 for two
// weeks: 18, 20, 23, 25, 27, 30 June) with three students.
func setupCohort(t *testing.T, selector prompt.DateSelector) harness {
	t.Helper()
	stateDir := t.TempDir()
	local := forms.NewLocal(filepath.Join(stateDir, FormsDir))
	core, logs := observer.New(zap.InfoLevel)

	m, err := Open(Options{
		StateDir: stateDir,
		Forms:    local,
		Selector: selector,
		Logger:   zap.New(core),
	})
	if err != nil {
		t.Fatalf("open manager: %v", err)
	}

	for _, s := range []roster.Student{
		{Name: "Ada Obi", Email: "ada@example.com"},
		{Name: "Bayo Eze", Email: "bayo@example.com"},
		{Name: "Chi Musa", Email: "chi@example.com"},
	} {
		if _, err := m.AddStudent(s.Name, s.Email); err != nil {
			t.Fatalf("add student: %v", err)
		}
	}

	if _, err := m.Init(InitOptions{
		Cohort:      7,
		Orientation: date("16/06/2025"),
		ClassDays:   schedule.ClassDays{schedule.Monday, schedule.Wednesday, schedule.Friday},
		Weeks:       2,
	}); err != nil {
		t.Fatalf("init: %v", err)
	}
	return harness{manager: m, forms: local, logs: logs}
}

func (h harness) respond(t *testing.T, artifactID string, response forms.Response) {
	t.Helper()
	if err := h.forms.AddResponse(artifactID, response); err != nil {
		t.Fatalf("add response: %v", err)
	}
}

func (h harness) column(t *testing.T, d schedule.Date) []attendance.Status {
	t.Helper()
	wb, err := roster.OpenWorkbook(h.manager.RosterPath())
	if err != nil {
		t.Fatalf("open roster: %v", err)
	}
	column, err := wb.GetColumn(d)
	if err != nil {
		t.Fatalf("get column %s: %v", d, err)
	}
	return column
}

func (h harness) status(t *testing.T) Snapshot {
	t.Helper()
	snap, err := h.manager.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	return snap
}

func TestInit(t *testing.T) {
	h := setupCohort(t, nil)

	want := []schedule.Date{
		date("18/06/2025"), date("20/06/2025"), date("23/06/2025"),
		date("25/06/2025"), date("27/06/2025"), date("30/06/2025"),
	}
	snap := h.status(t)
	if !snap.Configured || snap.Cohort != 7 || snap.Students != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !reflect.DeepEqual(snap.Dates, want) {
		t.Fatalf("dates = %v", snap.Dates)
	}
	if !reflect.DeepEqual(snap.Unheld, want) {
		t.Fatalf("unheld = %v", snap.Unheld)
	}
	if !reflect.DeepEqual(snap.UnsetGlobal, want) {
		t.Fatalf("unset global = %v", snap.UnsetGlobal)
	}

	wb, err := roster.OpenWorkbook(h.manager.RosterPath())
	if err != nil {
		t.Fatalf("open roster: %v", err)
	}
	if !reflect.DeepEqual(wb.DateColumns(), want) {
		t.Fatalf("roster columns = %v", wb.DateColumns())
	}
	if _, err := os.Stat(filepath.Join(h.manager.StateDir(), globalrecord.FileName)); err != nil {
		t.Fatalf("expected global record on disk: %v", err)
	}
	if h.logs.FilterMessage("ledger.configured").Len() != 1 {
		t.Fatal("expected ledger.configured event")
	}
}

func TestInit_ReconfigureDropsStaleColumns(t *testing.T) {
	h := setupCohort(t, nil)

	if _, err := h.manager.Init(InitOptions{
		Cohort:      7,
		Orientation: date("16/06/2025"),
		ClassDays:   schedule.ClassDays{schedule.Tuesday, schedule.Thursday, schedule.Friday},
		Weeks:       2,
	}); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}

	wb, err := roster.OpenWorkbook(h.manager.RosterPath())
	if err != nil {
		t.Fatalf("open roster: %v", err)
	}
	for _, col := range wb.DateColumns() {
		wd := col.Weekday()
		if wd != schedule.Tuesday && wd != schedule.Thursday && wd != schedule.Friday {
			t.Fatalf("stale column %s survived", col)
		}
	}
}

func TestInit_LockedOnceHeld(t *testing.T) {
	h := setupCohort(t, nil)
	if _, err := h.manager.HoldClass(context.Background(), date("18/06/2025")); err != nil {
		t.Fatalf("hold: %v", err)
	}

	_, err := h.manager.Init(InitOptions{
		Cohort:      7,
		Orientation: date("23/06/2025"),
		ClassDays:   schedule.ClassDays{schedule.Monday, schedule.Wednesday, schedule.Friday},
		Weeks:       2,
	})
	if !errors.Is(err, ledger.ErrScheduleLocked) {
		t.Fatalf("expected ErrScheduleLocked, got %v", err)
	}
}

func TestHoldAndMark(t *testing.T) {
	ctx := context.Background()
	h := setupCohort(t, prompt.Fixed{date("18/06/2025")})

	issued, err := h.manager.HoldClass(ctx, schedule.Date{})
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if len(issued) != 1 || issued[0].Date != date("18/06/2025") {
		t.Fatalf("issued = %+v", issued)
	}

	form, err := h.forms.Form(issued[0].ID)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	if !form.Published || len(form.SharedWith) != 3 {
		t.Fatalf("form not published to the roster: %+v", form)
	}
	if form.Title != "Cohort 7 attendance 18/06/2025" {
		t.Fatalf("title = %q", form.Title)
	}

	snap := h.status(t)
	if !reflect.DeepEqual(snap.UnrecordedHeld, []schedule.Date{date("18/06/2025")}) {
		t.Fatalf("unrecorded held = %v", snap.UnrecordedHeld)
	}

	h.respond(t, issued[0].ID, forms.Response{Email: "ada@example.com", Status: "P"})
	h.respond(t, issued[0].ID, forms.Response{Email: "BAYO@example.com", Status: "excused"})

	results, err := h.manager.MarkClass(ctx, schedule.Date{})
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if len(results) != 1 || results[0].Applied != 2 || len(results[0].Unknown) != 0 {
		t.Fatalf("results = %+v", results)
	}

	want := []attendance.Status{attendance.StatusPresent, attendance.StatusExcused, attendance.StatusAbsent}
	if got := h.column(t, date("18/06/2025")); !reflect.DeepEqual(got, want) {
		t.Fatalf("column = %v, want %v", got, want)
	}

	snap = h.status(t)
	if !reflect.DeepEqual(snap.Marked, []schedule.Date{date("18/06/2025")}) {
		t.Fatalf("marked = %v", snap.Marked)
	}
	if len(snap.UnrecordedHeld) != 0 || len(snap.Available[ledger.KindClass]) != 0 {
		t.Fatalf("expected nothing outstanding: %+v", snap)
	}

	for _, event := range []string{"artifact.issued", "ledger.held", "artifact.recorded", "ledger.marked"} {
		if h.logs.FilterMessage(event).Len() != 1 {
			t.Errorf("expected one %s event", event)
		}
	}
}

func TestHoldClass_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("already held", func(t *testing.T) {
		h := setupCohort(t, nil)
		if _, err := h.manager.HoldClass(ctx, date("18/06/2025")); err != nil {
			t.Fatalf("hold: %v", err)
		}
		if _, err := h.manager.HoldClass(ctx, date("18/06/2025")); !errors.Is(err, ErrAlreadyHeld) {
			t.Fatalf("expected ErrAlreadyHeld, got %v", err)
		}
	})

	t.Run("not scheduled", func(t *testing.T) {
		h := setupCohort(t, nil)
		if _, err := h.manager.HoldClass(ctx, date("19/06/2025")); !errors.Is(err, ledger.ErrNotScheduled) {
			t.Fatalf("expected ErrNotScheduled, got %v", err)
		}
	})

	t.Run("no selector", func(t *testing.T) {
		h := setupCohort(t, nil)
		if _, err := h.manager.HoldClass(ctx, schedule.Date{}); !errors.Is(err, ErrDateRequired) {
			t.Fatalf("expected ErrDateRequired, got %v", err)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		m, err := Open(Options{StateDir: t.TempDir()})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, err := m.HoldClass(ctx, date("18/06/2025")); !errors.Is(err, ledger.ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
	})
}

// flakyForms fails every CreateForm after the first n.
type flakyForms struct {
	*forms.Local
	n int
}

var errFormsDown = errors.New("forms service unavailable")

func (f *flakyForms) CreateForm(ctx context.Context, spec forms.Spec) (forms.Form, error) {
	if f.n == 0 {
		return forms.Form{}, errFormsDown
	}
	f.n--
	return f.Local.CreateForm(ctx, spec)
}

func TestHoldClass_PartialFailureKeepsIssued(t *testing.T) {
	ctx := context.Background()
	h := setupCohort(t, prompt.Fixed{date("18/06/2025"), date("20/06/2025")})
	flaky := &flakyForms{Local: h.forms, n: 1}
	h.manager.forms = flaky

	issued, err := h.manager.HoldClass(ctx, schedule.Date{})
	if !errors.Is(err, errFormsDown) {
		t.Fatalf("expected errFormsDown, got %v", err)
	}
	if len(issued) != 1 || issued[0].Date != date("18/06/2025") {
		t.Fatalf("issued = %+v", issued)
	}

	snap := h.status(t)
	if !reflect.DeepEqual(snap.Held, []schedule.Date{date("18/06/2025")}) {
		t.Fatalf("held = %v", snap.Held)
	}
	available := snap.Available[ledger.KindClass]
	if len(available) != 1 || available[0].ID != issued[0].ID {
		t.Fatalf("available = %+v", available)
	}

	flaky.n = 1
	again, err := h.manager.HoldClass(ctx, date("20/06/2025"))
	if err != nil {
		t.Fatalf("retry hold: %v", err)
	}
	if len(again) != 1 || again[0].Date != date("20/06/2025") {
		t.Fatalf("retry issued = %+v", again)
	}
}

func TestMarkClass_NotPending(t *testing.T) {
	h := setupCohort(t, nil)
	if _, err := h.manager.MarkClass(context.Background(), date("20/06/2025")); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestMarkClass_UnknownRespondent(t *testing.T) {
	ctx := context.Background()
	h := setupCohort(t, nil)
	issued, err := h.manager.HoldClass(ctx, date("20/06/2025"))
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	h.respond(t, issued[0].ID, forms.Response{Email: "stranger@example.com", Status: "P"})

	results, err := h.manager.MarkClass(ctx, date("20/06/2025"))
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !reflect.DeepEqual(results[0].Unknown, []string{"stranger@example.com"}) {
		t.Fatalf("unknown = %v", results[0].Unknown)
	}
	for _, status := range h.column(t, date("20/06/2025")) {
		if status != attendance.StatusAbsent {
			t.Fatalf("expected everyone absent, got %v", status)
		}
	}
}

func TestMarkClass_BadResponseLeavesLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	h := setupCohort(t, nil)
	issued, err := h.manager.HoldClass(ctx, date("20/06/2025"))
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	h.respond(t, issued[0].ID, forms.Response{Email: "ada@example.com", Status: "late"})

	if _, err := h.manager.MarkClass(ctx, date("20/06/2025")); !errors.Is(err, attendance.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if snap := h.status(t); len(snap.Marked) != 0 || len(snap.UnrecordedHeld) != 1 {
		t.Fatalf("failed mark changed the ledger: %+v", snap)
	}
}

func TestCancelClass(t *testing.T) {
	ctx := context.Background()
	h := setupCohort(t, nil)
	cancelled := date("20/06/2025")

	issued, err := h.manager.HoldClass(ctx, cancelled)
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := h.manager.CancelClass(cancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	h.respond(t, issued[0].ID, forms.Response{Email: "ada@example.com", Status: "P"})

	if _, err := h.manager.MarkClass(ctx, cancelled); err != nil {
		t.Fatalf("mark: %v", err)
	}
	for i, status := range h.column(t, cancelled) {
		if status != attendance.StatusNoClass {
			t.Fatalf("student %d: expected no class, got %v", i, status)
		}
	}

	snap := h.status(t)
	if schedule.Contains(snap.UnsetGlobal, cancelled) {
		t.Fatal("cancelled date should be set in the global record")
	}
	if !reflect.DeepEqual(snap.Cancelled, []schedule.Date{cancelled}) {
		t.Fatalf("cancelled = %v", snap.Cancelled)
	}
	if h.logs.FilterMessage("class.cancelled").Len() != 1 {
		t.Fatal("expected class.cancelled event")
	}
}

func TestCancelClass_RosterSaveFailureLeavesGlobalUnset(t *testing.T) {
	h := setupCohort(t, nil)
	cancelled := date("20/06/2025")

	// A non-empty directory where the roster's temp file goes makes the
	// roster save fail.
	blocker := h.manager.rosterPath + ".tmp.xlsx"
	if err := os.MkdirAll(filepath.Join(blocker, "keep"), 0755); err != nil {
		t.Fatalf("block roster save: %v", err)
	}
	if err := h.manager.CancelClass(cancelled); err == nil {
		t.Fatal("expected the roster save to fail")
	}

	snap := h.status(t)
	if !schedule.Contains(snap.UnsetGlobal, cancelled) {
		t.Fatal("global record changed although the roster was not saved")
	}
	if len(snap.Cancelled) != 0 {
		t.Fatalf("cancelled = %v", snap.Cancelled)
	}
	if h.logs.FilterMessage("class.cancelled").Len() != 1 {
		t.Fatal("expected class.cancelled event before the failed save")
	}

	if err := os.RemoveAll(blocker); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if err := h.manager.CancelClass(cancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if snap := h.status(t); !reflect.DeepEqual(snap.Cancelled, []schedule.Date{cancelled}) {
		t.Fatalf("cancelled = %v", snap.Cancelled)
	}
}

func TestCDS(t *testing.T) {
	ctx := context.Background()
	h := setupCohort(t, nil)

	artifact, err := h.manager.IssueCDSForm(ctx)
	if err != nil {
		t.Fatalf("issue CDS: %v", err)
	}
	if !artifact.Date.IsZero() {
		t.Fatalf("CDS forms carry no date, got %s", artifact.Date)
	}
	h.respond(t, artifact.ID, forms.Response{Email: "ada@example.com", Weekday: "fri"})
	h.respond(t, artifact.ID, forms.Response{Email: "chi@example.com", Weekday: "saturday"})

	results, err := h.manager.RecordCDS(ctx)
	if err != nil {
		t.Fatalf("record CDS: %v", err)
	}
	if len(results) != 1 || results[0].Applied != 2 {
		t.Fatalf("results = %+v", results)
	}
	for _, d := range []schedule.Date{date("20/06/2025"), date("27/06/2025")} {
		if got := h.column(t, d); got[0] != attendance.StatusCDS || got[2] != attendance.StatusEmpty {
			t.Fatalf("%s column = %v", d, got)
		}
	}

	results, err = h.manager.RecordCDS(ctx)
	if err != nil {
		t.Fatalf("record CDS again: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("recorded forms should not be applied twice: %+v", results)
	}
}

func TestUpdates(t *testing.T) {
	ctx := context.Background()
	h := setupCohort(t, nil)

	artifact, err := h.manager.IssueUpdateForm(ctx)
	if err != nil {
		t.Fatalf("issue update: %v", err)
	}
	h.respond(t, artifact.ID, forms.Response{Email: "ada@example.com", Name: "Ada Obi"})
	h.respond(t, artifact.ID, forms.Response{Email: "dayo@example.com", Fields: map[string]string{"name": "Dayo Ali"}})

	results, err := h.manager.RecordUpdates(ctx)
	if err != nil {
		t.Fatalf("record updates: %v", err)
	}
	if len(results) != 1 || results[0].Applied != 1 {
		t.Fatalf("results = %+v", results)
	}

	students, err := h.manager.Students()
	if err != nil {
		t.Fatalf("students: %v", err)
	}
	if len(students) != 4 || students[3] != (roster.Student{Name: "Dayo Ali", Email: "dayo@example.com"}) {
		t.Fatalf("students = %+v", students)
	}
	if got := h.column(t, date("18/06/2025")); len(got) != 4 {
		t.Fatalf("new student should get cells in every column, got %v", got)
	}
}

func TestEdit(t *testing.T) {
	h := setupCohort(t, nil)
	d := date("23/06/2025")

	if err := h.manager.EditAll(d, attendance.StatusPresent); err != nil {
		t.Fatalf("edit all: %v", err)
	}
	if err := h.manager.EditCell(d, "Bayo@example.com", attendance.StatusAbsent); err != nil {
		t.Fatalf("edit cell: %v", err)
	}
	want := []attendance.Status{attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusPresent}
	if got := h.column(t, d); !reflect.DeepEqual(got, want) {
		t.Fatalf("column = %v, want %v", got, want)
	}

	if err := h.manager.EditCell(d, "nobody@example.com", attendance.StatusAbsent); !errors.Is(err, ErrUnknownStudent) {
		t.Fatalf("expected ErrUnknownStudent, got %v", err)
	}
	if err := h.manager.EditAll(date("24/06/2025"), attendance.StatusPresent); !errors.Is(err, ledger.ErrNotScheduled) {
		t.Fatalf("expected ErrNotScheduled, got %v", err)
	}
	if err := h.manager.EditAll(d, attendance.Status("late")); !errors.Is(err, attendance.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestInterlude(t *testing.T) {
	h := setupCohort(t, nil)
	if _, err := h.manager.HoldClass(context.Background(), date("18/06/2025")); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := h.manager.EditAll(date("23/06/2025"), attendance.StatusExcused); err != nil {
		t.Fatalf("edit: %v", err)
	}

	remap, err := h.manager.Interlude(InterludeOptions{Anchor: date("23/06/2025"), Shift: 7})
	if err != nil {
		t.Fatalf("interlude: %v", err)
	}
	if len(remap.Renamed) != 1 || remap.Renamed[0] != (ledger.Rename{From: date("23/06/2025"), To: date("30/06/2025")}) {
		t.Fatalf("remap = %+v", remap)
	}

	want := []schedule.Date{date("18/06/2025"), date("20/06/2025"), date("30/06/2025")}
	snap := h.status(t)
	if !reflect.DeepEqual(snap.Dates, want) {
		t.Fatalf("dates = %v", snap.Dates)
	}
	if snap.Interlude == nil || snap.Interlude.End != date("30/06/2025") {
		t.Fatalf("interlude = %+v", snap.Interlude)
	}

	wb, err := roster.OpenWorkbook(h.manager.RosterPath())
	if err != nil {
		t.Fatalf("open roster: %v", err)
	}
	if !reflect.DeepEqual(wb.DateColumns(), want) {
		t.Fatalf("columns = %v", wb.DateColumns())
	}
	for _, status := range h.column(t, date("30/06/2025")) {
		if status != attendance.StatusExcused {
			t.Fatalf("relabelled column lost its cells: %v", status)
		}
	}

	if _, err := h.manager.Interlude(InterludeOptions{Anchor: date("30/06/2025"), Shift: 2}); !errors.Is(err, ledger.ErrInterludeActive) {
		t.Fatalf("expected ErrInterludeActive, got %v", err)
	}
	if h.logs.FilterMessage("interlude.applied").Len() != 1 {
		t.Fatal("expected one interlude.applied event")
	}
}

func TestInterlude_Rejections(t *testing.T) {
	h := setupCohort(t, nil)
	if _, err := h.manager.HoldClass(context.Background(), date("23/06/2025")); err != nil {
		t.Fatalf("hold: %v", err)
	}

	tests := []struct {
		name string
		opts InterludeOptions
		want error
	}{
		{name: "resume before anchor", opts: InterludeOptions{Anchor: date("25/06/2025"), Resume: date("20/06/2025")}, want: schedule.ErrOrder},
		{name: "zero shift", opts: InterludeOptions{Anchor: date("25/06/2025")}, want: schedule.ErrRange},
		{name: "anchor before held", opts: InterludeOptions{Anchor: date("20/06/2025"), Shift: 7}, want: schedule.ErrOrder},
		{name: "not a class day", opts: InterludeOptions{Anchor: date("25/06/2025"), Resume: date("26/06/2025")}, want: ledger.ErrScheduleMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.manager.Interlude(tt.opts); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if snap := h.status(t); snap.Interlude != nil || len(snap.Dates) != 6 {
		t.Fatalf("rejected interlude changed the ledger: %+v", snap)
	}
}

func TestAddStudent_Duplicate(t *testing.T) {
	h := setupCohort(t, nil)
	if _, err := h.manager.AddStudent("Ada again", " ADA@example.com "); !errors.Is(err, roster.ErrStudentExists) {
		t.Fatalf("expected ErrStudentExists, got %v", err)
	}
}

func TestAttendance(t *testing.T) {
	h := setupCohort(t, nil)
	if err := h.manager.EditCell(date("25/06/2025"), "chi@example.com", attendance.StatusExcused); err != nil {
		t.Fatalf("edit: %v", err)
	}

	marks, err := h.manager.Attendance(date("25/06/2025"))
	if err != nil {
		t.Fatalf("attendance: %v", err)
	}
	if len(marks) != 3 || marks[2].Status != attendance.StatusExcused || marks[0].Status != attendance.StatusEmpty {
		t.Fatalf("marks = %+v", marks)
	}
	if marks[2].Student.Email != "chi@example.com" {
		t.Fatalf("student = %+v", marks[2].Student)
	}

	if _, err := h.manager.Attendance(date("26/06/2025")); !errors.Is(err, ledger.ErrNotScheduled) {
		t.Fatalf("expected ErrNotScheduled, got %v", err)
	}
}

// Package roster holds the table of students and their per-session
// attendance cells. Each session date is one column.
package roster

import (
	"errors"
	"fmt"
	"sort"

	"github.com/amonks/cohort/attendance"
	internalstrings "github.com/amonks/cohort/internal/strings"
	"github.com/amonks/cohort/schedule"
)

var (
	// ErrColumnNotFound is returned when a date has no column.
	ErrColumnNotFound = errors.New("date column not found")

	// ErrColumnExists is returned when adding or renaming onto an existing column.
	ErrColumnExists = errors.New("date column already exists")

	// ErrStudentNotFound is returned for an unknown student.
	ErrStudentNotFound = errors.New("student not found")

	// ErrStudentExists is returned when adding a student twice.
	ErrStudentExists = errors.New("student already on roster")

	// ErrColumnLength is returned when a column has the wrong number of cells.
	ErrColumnLength = errors.New("column length does not match roster")
)

// Student is one row of the roster.
type Student struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store is the roster collaborator used by the session manager and the
// ledger's interlude remapping.
type Store interface {
	attendance.Sheet

	Students() []Student
	IndexOf(email string) (int, bool)
	AddStudent(student Student) (int, error)

	DateColumns() []schedule.Date
	HasColumn(date schedule.Date) bool
	AddColumn(date schedule.Date) error
	DropColumn(date schedule.Date) error
	RenameColumn(from, to schedule.Date) error
}

// Memory is an in-memory roster.
type Memory struct {
	students []Student
	order    []schedule.Date
	columns  map[schedule.Date][]attendance.Status
}

// NewMemory returns an empty roster.
func NewMemory() *Memory {
	return &Memory{columns: make(map[schedule.Date][]attendance.Status)}
}

// Len returns the number of students.
func (m *Memory) Len() int {
	return len(m.students)
}

// Students returns a copy of the student rows.
func (m *Memory) Students() []Student {
	return append([]Student(nil), m.students...)
}

// IndexOf finds a student by email, ignoring case and surrounding space.
func (m *Memory) IndexOf(email string) (int, bool) {
	key := internalstrings.NormalizeLowerTrimSpace(email)
	if key == "" {
		return -1, false
	}
	for i, student := range m.students {
		if internalstrings.NormalizeLowerTrimSpace(student.Email) == key {
			return i, true
		}
	}
	return -1, false
}

// AddStudent appends a student with empty cells in every column.
func (m *Memory) AddStudent(student Student) (int, error) {
	student.Name = internalstrings.NormalizeWhitespace(student.Name)
	student.Email = internalstrings.TrimSpace(student.Email)
	if student.Email == "" {
		return -1, fmt.Errorf("student email is required")
	}
	if _, ok := m.IndexOf(student.Email); ok {
		return -1, fmt.Errorf("%w: %s", ErrStudentExists, student.Email)
	}
	m.students = append(m.students, student)
	for date, column := range m.columns {
		m.columns[date] = append(column, attendance.StatusEmpty)
	}
	return len(m.students) - 1, nil
}

// DateColumns returns the date columns in sheet order.
func (m *Memory) DateColumns() []schedule.Date {
	return append([]schedule.Date(nil), m.order...)
}

// HasColumn reports whether date has a column.
func (m *Memory) HasColumn(date schedule.Date) bool {
	_, ok := m.columns[date]
	return ok
}

// AddColumn inserts an empty column, keeping columns in date order.
func (m *Memory) AddColumn(date schedule.Date) error {
	if m.HasColumn(date) {
		return fmt.Errorf("%w: %s", ErrColumnExists, date)
	}
	m.columns[date] = make([]attendance.Status, len(m.students))
	m.order = append(m.order, date)
	sort.SliceStable(m.order, func(i, j int) bool { return m.order[i].Before(m.order[j]) })
	return nil
}

// DropColumn removes a column and its cells.
func (m *Memory) DropColumn(date schedule.Date) error {
	idx := schedule.Index(m.order, date)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, date)
	}
	m.order = append(m.order[:idx], m.order[idx+1:]...)
	delete(m.columns, date)
	return nil
}

// RenameColumn relabels a column in place, keeping its cells and position.
func (m *Memory) RenameColumn(from, to schedule.Date) error {
	if from == to {
		return nil
	}
	idx := schedule.Index(m.order, from)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, from)
	}
	if m.HasColumn(to) {
		return fmt.Errorf("%w: %s", ErrColumnExists, to)
	}
	m.order[idx] = to
	m.columns[to] = m.columns[from]
	delete(m.columns, from)
	return nil
}

// GetColumn returns a copy of the cells for date.
func (m *Memory) GetColumn(date schedule.Date) ([]attendance.Status, error) {
	column, ok := m.columns[date]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, date)
	}
	return append([]attendance.Status(nil), column...), nil
}

// SetColumn replaces the cells for date.
func (m *Memory) SetColumn(date schedule.Date, values []attendance.Status) error {
	if !m.HasColumn(date) {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, date)
	}
	if len(values) != len(m.students) {
		return fmt.Errorf("%w: got %d cells for %d students", ErrColumnLength, len(values), len(m.students))
	}
	m.columns[date] = append([]attendance.Status(nil), values...)
	return nil
}

// GetCell returns one student's cell for date.
func (m *Memory) GetCell(date schedule.Date, student int) (attendance.Status, error) {
	column, ok := m.columns[date]
	if !ok {
		return attendance.StatusEmpty, fmt.Errorf("%w: %s", ErrColumnNotFound, date)
	}
	if student < 0 || student >= len(column) {
		return attendance.StatusEmpty, fmt.Errorf("%w: row %d", ErrStudentNotFound, student)
	}
	return column[student], nil
}

// SetCell sets one student's cell for date.
func (m *Memory) SetCell(date schedule.Date, student int, value attendance.Status) error {
	column, ok := m.columns[date]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, date)
	}
	if student < 0 || student >= len(column) {
		return fmt.Errorf("%w: row %d", ErrStudentNotFound, student)
	}
	column[student] = value
	return nil
}

// EnsureColumns adds an empty column for every date that lacks one and
// returns the dates added.
func EnsureColumns(store Store, dates []schedule.Date) ([]schedule.Date, error) {
	var added []schedule.Date
	for _, date := range dates {
		if store.HasColumn(date) {
			continue
		}
		if err := store.AddColumn(date); err != nil {
			return added, err
		}
		added = append(added, date)
	}
	return added, nil
}

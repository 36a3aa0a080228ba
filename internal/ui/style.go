package ui

import (
	"os"

	"github.com/amonks/cohort/attendance"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	headerStyle  = lipgloss.NewStyle().Bold(true)

	statusStyles = map[attendance.Status]lipgloss.Style{
		attendance.StatusPresent: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		attendance.StatusExcused: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		attendance.StatusCDS:     lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		attendance.StatusAbsent:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		attendance.StatusNoClass: lipgloss.NewStyle().Faint(true),
	}
)

func ansiEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func render(style lipgloss.Style, value string) string {
	if !ansiEnabled() {
		return value
	}
	return style.Render(value)
}

// Success styles a confirmation line.
func Success(value string) string {
	return render(successStyle, value)
}

// Warn styles a line the operator should act on.
func Warn(value string) string {
	return render(warnStyle, value)
}

// Header styles a section heading.
func Header(value string) string {
	return render(headerStyle, value)
}

// StatusCode returns a status's roster code, colored by status.
func StatusCode(status attendance.Status) string {
	if status.IsEmpty() {
		return "-"
	}
	style, ok := statusStyles[status]
	if !ok {
		return string(status)
	}
	return render(style, status.Code())
}

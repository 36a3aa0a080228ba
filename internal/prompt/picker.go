package prompt

import (
	"fmt"
	"io"
	"strings"

	"github.com/amonks/cohort/schedule"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24"))
	checkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	pickerKeysMap = pickerKeys{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("q", "cancel")),
	}
)

type pickerKeys struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func (k pickerKeys) help() string {
	var parts []string
	for _, b := range []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.Confirm, k.Cancel} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// Picker is an interactive multi-select over the candidate dates.
type Picker struct {
	In  io.Reader
	Out io.Writer
}

// SelectDates implements DateSelector.
func (p Picker) SelectDates(title string, candidates []schedule.Date) ([]schedule.Date, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	program := tea.NewProgram(newPickerModel(title, candidates), tea.WithInput(p.In), tea.WithOutput(p.Out))
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("run date picker: %w", err)
	}
	m := final.(pickerModel)
	if m.cancelled {
		return nil, ErrCancelled
	}
	return m.selection(), nil
}

type pickerModel struct {
	title      string
	candidates []schedule.Date
	cursor     int
	checked    map[int]bool
	done       bool
	cancelled  bool
}

func newPickerModel(title string, candidates []schedule.Date) pickerModel {
	return pickerModel{
		title:      title,
		candidates: candidates,
		checked:    make(map[int]bool, len(candidates)),
	}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, pickerKeysMap.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, pickerKeysMap.Confirm):
		// Confirming with nothing ticked picks the highlighted date.
		if len(m.checked) == 0 {
			m.checked[m.cursor] = true
		}
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, pickerKeysMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, pickerKeysMap.Down):
		if m.cursor < len(m.candidates)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, pickerKeysMap.Toggle):
		if m.checked[m.cursor] {
			delete(m.checked, m.cursor)
		} else {
			m.checked[m.cursor] = true
		}
	case key.Matches(keyMsg, pickerKeysMap.All):
		if len(m.checked) == len(m.candidates) {
			m.checked = make(map[int]bool, len(m.candidates))
		} else {
			for i := range m.candidates {
				m.checked[i] = true
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, d := range m.candidates {
		box := "[ ]"
		if m.checked[i] {
			box = checkedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s %s", box, d.Weekday().Short(), d)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render(pickerKeysMap.help()))
	b.WriteByte('\n')
	return b.String()
}

func (m pickerModel) selection() []schedule.Date {
	var out []schedule.Date
	for i, d := range m.candidates {
		if m.checked[i] {
			out = append(out, d)
		}
	}
	return out
}

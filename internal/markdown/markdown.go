// Package markdown builds the markdown status report and renders it for
// the terminal with glamour.
package markdown

import (
	"fmt"
	"strings"
	"sync"

	internalstrings "github.com/amonks/cohort/internal/strings"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

type renderer interface {
	Render(string) (string, error)
}

var (
	rendererMu sync.Mutex
	renderers  = map[int]renderer{}
)

// Render formats markdown text for terminal output at width columns. If
// rendering fails the normalized input is returned unchanged.
func Render(width int, input string) string {
	value := internalstrings.TrimTrailingNewlines(internalstrings.NormalizeNewlines(input))
	if strings.TrimSpace(value) == "" {
		return ""
	}
	if width < 1 {
		width = 1
	}

	rendered := value
	if r := markdownRenderer(width); r != nil {
		if formatted, ok := safeRender(r, value); ok {
			rendered = formatted
		}
	}
	return internalstrings.TrimTrailingNewlines(rendered)
}

func safeRender(r renderer, value string) (out string, ok bool) {
	defer func() {
		if recover() != nil {
			out, ok = "", false
		}
	}()
	formatted, err := r.Render(value)
	if err != nil {
		return "", false
	}
	return formatted, true
}

func markdownRenderer(width int) renderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}

// Document accumulates markdown blocks separated by blank lines.
type Document struct {
	blocks []string
}

// Heading adds a heading of the given level.
func (d *Document) Heading(level int, text string) {
	level = min(max(level, 1), 6)
	d.blocks = append(d.blocks, strings.Repeat("#", level)+" "+internalstrings.NormalizeWhitespace(text))
}

// Paragraph adds a paragraph.
func (d *Document) Paragraph(format string, args ...any) {
	d.blocks = append(d.blocks, fmt.Sprintf(format, args...))
}

// List adds a bullet list, or the empty text when there are no items.
func (d *Document) List(items []string, empty string) {
	if len(items) == 0 {
		d.blocks = append(d.blocks, "_"+empty+"_")
		return
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	d.blocks = append(d.blocks, strings.Join(lines, "\n"))
}

// Table adds a pipe table.
func (d *Document) Table(headers []string, rows [][]string) {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, cell := range cells {
			b.WriteString(" " + strings.ReplaceAll(cell, "|", `\|`) + " |")
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	d.blocks = append(d.blocks, strings.TrimSuffix(b.String(), "\n"))
}

// String returns the markdown source.
func (d *Document) String() string {
	if len(d.blocks) == 0 {
		return ""
	}
	return strings.Join(d.blocks, "\n\n") + "\n"
}

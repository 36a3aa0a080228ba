// Package prompt asks the operator to pick session dates, with a
// bubbletea picker on a terminal and numbered lines otherwise.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	internalstrings "github.com/amonks/cohort/internal/strings"
	"github.com/amonks/cohort/schedule"
	"golang.org/x/term"
)

// ErrCancelled is returned when the operator abandons a selection.
var ErrCancelled = errors.New("selection cancelled")

// DateSelector chooses a subset of candidate dates.
type DateSelector interface {
	SelectDates(title string, candidates []schedule.Date) ([]schedule.Date, error)
}

// New returns a picker when in and out are terminals and a line prompt
// otherwise.
func New(in, out *os.File) DateSelector {
	if term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd())) {
		return Picker{In: in, Out: out}
	}
	return Lines{In: in, Out: out}
}

// Fixed answers every selection with the same dates, keeping only those
// that are candidates.
type Fixed []schedule.Date

// SelectDates implements DateSelector.
func (f Fixed) SelectDates(_ string, candidates []schedule.Date) ([]schedule.Date, error) {
	var out []schedule.Date
	for _, d := range f {
		if !schedule.Contains(candidates, d) {
			return nil, fmt.Errorf("%s is not one of the choices", d)
		}
		if !schedule.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Lines prints numbered candidates and reads one line of choices: numbers
// or dates separated by commas, "all", or nothing for none.
type Lines struct {
	In  io.Reader
	Out io.Writer
}

// SelectDates implements DateSelector.
func (l Lines) SelectDates(title string, candidates []schedule.Date) ([]schedule.Date, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	fmt.Fprintln(l.Out, title)
	for i, d := range candidates {
		fmt.Fprintf(l.Out, "  %d) %s %s\n", i+1, d.Weekday().Short(), d)
	}
	fmt.Fprint(l.Out, "Choose (numbers or dates, comma separated; all; blank for none): ")

	line, err := bufio.NewReader(l.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("read selection: %w", err)
	}
	return ParseSelection(line, candidates)
}

// ParseSelection interprets a typed selection against candidates.
func ParseSelection(input string, candidates []schedule.Date) ([]schedule.Date, error) {
	input = internalstrings.NormalizeLowerTrimSpace(input)
	switch input {
	case "":
		return nil, nil
	case "all", "*":
		return append([]schedule.Date(nil), candidates...), nil
	case "q", "quit":
		return nil, ErrCancelled
	}

	var chosen []schedule.Date
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var date schedule.Date
		if n, err := strconv.Atoi(part); err == nil {
			if n < 1 || n > len(candidates) {
				return nil, fmt.Errorf("%w: choice %d is not between 1 and %d", schedule.ErrRange, n, len(candidates))
			}
			date = candidates[n-1]
		} else {
			parsed, err := schedule.ParseDate(part)
			if err != nil {
				return nil, err
			}
			if !schedule.Contains(candidates, parsed) {
				return nil, fmt.Errorf("%s is not one of the choices", parsed)
			}
			date = parsed
		}
		if !schedule.Contains(chosen, date) {
			chosen = append(chosen, date)
		}
	}
	return chosen, nil
}

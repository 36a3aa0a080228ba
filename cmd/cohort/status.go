package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amonks/cohort/internal/markdown"
	"github.com/amonks/cohort/internal/ui"
	"github.com/amonks/cohort/ledger"
	"github.com/amonks/cohort/schedule"
	"github.com/amonks/cohort/session"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what has been done and what is outstanding",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var (
	statusJSON     bool
	statusMarkdown bool
)

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	statusCmd.Flags().BoolVar(&statusMarkdown, "markdown", false, "Render as a markdown report")
	statusCmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.manager.Status()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case statusJSON:
		return encodeJSON(out, snap)
	case statusMarkdown:
		_, err := fmt.Fprintln(out, markdown.Render(terminalWidth(os.Stdout), statusDocument(snap).String()))
		return err
	default:
		writeStatus(out, snap)
		return nil
	}
}

func writeStatus(out io.Writer, snap session.Snapshot) {
	if !snap.Configured {
		fmt.Fprintln(out, ui.Warn("Not configured; run cohort init."))
		fmt.Fprintf(out, "Students: %d\n", snap.Students)
		return
	}

	fmt.Fprintln(out, ui.Header(fmt.Sprintf("Cohort %d", snap.Cohort)))
	fmt.Fprintf(out, "Orientation: %s, %d weeks on %s\n", snap.Orientation, snap.Weeks, strings.Join(snap.ClassDays, ", "))
	if snap.Interlude != nil {
		fmt.Fprintf(out, "Interlude: %s to %s\n", snap.Interlude.Start, snap.Interlude.End)
	}
	fmt.Fprintf(out, "Students: %d\n", snap.Students)
	fmt.Fprintf(out, "Sessions: %d (%d held, %d marked)\n", len(snap.Dates), len(snap.Held), len(snap.Marked))

	pending := func(label string, count int, detail string) {
		line := fmt.Sprintf("%s: %s", label, detail)
		if count > 0 {
			line = ui.Warn(line)
		}
		fmt.Fprintln(out, line)
	}
	pending("Awaiting responses", len(snap.UnrecordedHeld), joinDates(snap.UnrecordedHeld))
	pending("Held but unmarked", len(snap.Unmarked), joinDates(snap.Unmarked))
	fmt.Fprintf(out, "Cancelled: %s\n", joinDates(snap.Cancelled))
	for _, kind := range ledger.ValidKinds() {
		available := snap.Available[kind]
		pending(fmt.Sprintf("Open %s forms", kind), len(available), fmt.Sprint(len(available)))
	}
	for _, r := range snap.Reports {
		if r.Produced {
			fmt.Fprintf(out, "Report %s: %s\n", r.Kind, r.Path)
		}
	}
}

func statusDocument(snap session.Snapshot) *markdown.Document {
	doc := &markdown.Document{}
	if !snap.Configured {
		doc.Heading(1, "Cohort")
		doc.Paragraph("Not configured. Run `cohort init`.")
		return doc
	}

	doc.Heading(1, fmt.Sprintf("Cohort %d", snap.Cohort))
	doc.Paragraph("Orientation **%s**, %d weeks on %s. %d students.",
		snap.Orientation, snap.Weeks, strings.Join(snap.ClassDays, ", "), snap.Students)
	if snap.Interlude != nil {
		doc.Paragraph("Interlude from %s until %s.", snap.Interlude.Start, snap.Interlude.End)
	}

	doc.Heading(2, "Sessions")
	var rows [][]string
	for _, d := range snap.Dates {
		rows = append(rows, []string{
			d.String(),
			d.Weekday().Short(),
			yesNo(schedule.Contains(snap.Held, d)),
			yesNo(schedule.Contains(snap.Marked, d)),
			yesNo(schedule.Contains(snap.Cancelled, d)),
		})
	}
	doc.Table([]string{"Date", "Day", "Held", "Marked", "Cancelled"}, rows)

	doc.Heading(2, "Outstanding")
	var outstanding []string
	for _, d := range snap.UnrecordedHeld {
		outstanding = append(outstanding, fmt.Sprintf("Record responses for %s", d))
	}
	for _, kind := range ledger.ValidKinds() {
		if kind == ledger.KindClass {
			continue
		}
		for _, a := range snap.Available[kind] {
			outstanding = append(outstanding, fmt.Sprintf("Record %s form %q", kind, a.Title))
		}
	}
	doc.List(outstanding, "Nothing outstanding.")

	doc.Heading(2, "Reports")
	var reports []string
	for _, r := range snap.Reports {
		if r.Produced {
			reports = append(reports, fmt.Sprintf("%s: `%s`", r.Kind, r.Path))
		}
	}
	doc.List(reports, "No reports produced yet.")
	return doc
}

package main

import (
	"fmt"

	"github.com/amonks/cohort/attendance"
	"github.com/amonks/cohort/internal/ui"
	"github.com/amonks/cohort/schedule"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <date> <status>",
	Short: "Set attendance for a session",
	Long: `Set attendance for a session. Without --student, the status is merged
into every student's cell: a cancellation always applies, CDS days are
kept, and an excuse is never downgraded to absent. With --student, that
student's cell is overwritten.

Statuses: present (P), excused (E), cds (CDS), absent (A), no_class (NC).`,
	Args: cobra.ExactArgs(2),
	RunE: runEdit,
}

var showCmd = &cobra.Command{
	Use:   "show <date>",
	Short: "Show every student's attendance for a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	editStudent string
	showJSON    bool
)

func init() {
	rootCmd.AddCommand(editCmd, showCmd)
	editCmd.Flags().StringVar(&editStudent, "student", "", "Email of the one student to edit")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
}

func runEdit(cmd *cobra.Command, args []string) error {
	date, err := schedule.ParseDate(args[0])
	if err != nil {
		return err
	}
	status, err := attendance.ParseStatus(args[1])
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if editStudent != "" {
		err = a.manager.EditCell(date, editStudent, status)
	} else {
		err = a.manager.EditAll(date, status)
	}
	if err != nil {
		return err
	}

	who := "everyone"
	if editStudent != "" {
		who = editStudent
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s: %s for %s", date, status.Label(), who)))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	date, err := schedule.ParseDate(args[0])
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	marks, err := a.manager.Attendance(date)
	if err != nil {
		return err
	}
	if showJSON {
		return encodeJSON(cmd.OutOrStdout(), marks)
	}
	builder := ui.NewTableBuilder([]string{"NAME", "EMAIL", "STATUS"}, len(marks))
	for _, m := range marks {
		builder.AddRow(m.Student.Name, m.Student.Email, ui.StatusCode(m.Status))
	}
	fmt.Fprint(cmd.OutOrStdout(), builder.String())
	return nil
}

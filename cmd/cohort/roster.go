package main

import (
	"fmt"

	"github.com/amonks/cohort/internal/ui"
	"github.com/spf13/cobra"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the students on the roster",
}

var rosterAddCmd = &cobra.Command{
	Use:   "add <name> <email>",
	Short: "Add a student",
	Args:  cobra.ExactArgs(2),
	RunE:  runRosterAdd,
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the students",
	Args:  cobra.NoArgs,
	RunE:  runRosterList,
}

var rosterListJSON bool

func init() {
	rootCmd.AddCommand(rosterCmd)
	rosterCmd.AddCommand(rosterAddCmd, rosterListCmd)
	rosterListCmd.Flags().BoolVar(&rosterListJSON, "json", false, "Output as JSON")
}

func runRosterAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	student, err := a.manager.AddStudent(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added %s <%s>", student.Name, student.Email)))
	return nil
}

func runRosterList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	students, err := a.manager.Students()
	if err != nil {
		return err
	}
	if rosterListJSON {
		return encodeJSON(cmd.OutOrStdout(), students)
	}
	if len(students) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No students.")
		return nil
	}
	builder := ui.NewTableBuilder([]string{"NAME", "EMAIL"}, len(students))
	for _, s := range students {
		builder.AddRow(s.Name, s.Email)
	}
	fmt.Fprint(cmd.OutOrStdout(), builder.String())
	return nil
}

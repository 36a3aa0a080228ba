package main

import (
	"fmt"

	"github.com/amonks/cohort/internal/ui"
	"github.com/amonks/cohort/schedule"
	"github.com/spf13/cobra"
)

var classCmd = &cobra.Command{
	Use:   "class",
	Short: "Hold and mark class sessions",
}

var classHoldCmd = &cobra.Command{
	Use:   "hold [date]",
	Short: "Issue the attendance form for a session",
	Long: `Issue the attendance form for a session and mark it held. Without a
date, choose among the sessions not yet held.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassHold,
}

var classMarkCmd = &cobra.Command{
	Use:   "mark [date]",
	Short: "Record a session's responses in the roster",
	Long: `Merge the responses to a held session's attendance form into the roster.
Students who did not respond are marked absent, or no class when the
session was cancelled. Without a date, choose among the sessions awaiting
responses.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassMark,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <date>",
	Short: "Record that a session did not take place",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

func init() {
	rootCmd.AddCommand(classCmd, cancelCmd)
	classCmd.AddCommand(classHoldCmd, classMarkCmd)
}

func runClassHold(cmd *cobra.Command, args []string) error {
	date, err := dateArg(args, 0)
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	issued, err := a.manager.HoldClass(cmd.Context(), date)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(issued) == 0 {
		fmt.Fprintln(out, "No sessions held.")
		return nil
	}
	for _, artifact := range issued {
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Held %s", artifact.Date)))
		fmt.Fprintf(out, "  %s\n  %s\n", artifact.Title, artifact.URL)
	}
	return nil
}

func runClassMark(cmd *cobra.Command, args []string) error {
	date, err := dateArg(args, 0)
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.manager.MarkClass(cmd.Context(), date)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No sessions marked.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Marked %s: %d responses", r.Artifact.Date, r.Applied)))
		for _, email := range r.Unknown {
			fmt.Fprintln(out, ui.Warn(fmt.Sprintf("  not on roster: %s", email)))
		}
	}
	return nil
}

func runCancel(cmd *cobra.Command, args []string) error {
	date, err := schedule.ParseDate(args[0])
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.manager.CancelClass(date); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Cancelled %s", date)))
	return nil
}

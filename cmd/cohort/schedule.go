package main

import (
	"fmt"

	"github.com/amonks/cohort/internal/ui"
	"github.com/amonks/cohort/schedule"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "List the session dates",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

var scheduleJSON bool

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().BoolVar(&scheduleJSON, "json", false, "Output as JSON")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.manager.Status()
	if err != nil {
		return err
	}
	if !snap.Configured {
		return fmt.Errorf("cohort schedule not configured; run cohort init")
	}
	if scheduleJSON {
		return encodeJSON(cmd.OutOrStdout(), snap.Dates)
	}

	builder := ui.NewTableBuilder([]string{"DATE", "DAY", "HELD", "MARKED", "CANCELLED"}, len(snap.Dates))
	for _, d := range snap.Dates {
		builder.AddRow(d.String(), d.Weekday().Short(),
			yesNo(schedule.Contains(snap.Held, d)),
			yesNo(schedule.Contains(snap.Marked, d)),
			yesNo(schedule.Contains(snap.Cancelled, d)),
		)
	}
	fmt.Fprint(cmd.OutOrStdout(), builder.String())
	if snap.Interlude != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\nInterlude: no sessions from %s until %s\n", snap.Interlude.Start, snap.Interlude.End)
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

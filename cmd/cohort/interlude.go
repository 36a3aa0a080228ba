package main

import (
	"fmt"

	"github.com/amonks/cohort/internal/ui"
	"github.com/amonks/cohort/schedule"
	"github.com/amonks/cohort/session"
	"github.com/spf13/cobra"
)

var interludeCmd = &cobra.Command{
	Use:   "interlude <anchor>",
	Short: "Pause the schedule from a session",
	Long: `Pause the schedule from the anchor session. Classes resume on the
--resume date, or --shift days after the anchor. The course still ends
when it was going to, so sessions that no longer fit are dropped. Roster
columns from the anchor onward are relabelled to the new dates.

A cohort takes one interlude, and it must start after every held session.`,
	Args: cobra.ExactArgs(1),
	RunE: runInterlude,
}

var (
	interludeResume string
	interludeShift  int
)

func init() {
	rootCmd.AddCommand(interludeCmd)
	interludeCmd.Flags().StringVar(&interludeResume, "resume", "", "Date classes resume (dd/mm/yyyy)")
	interludeCmd.Flags().IntVar(&interludeShift, "shift", 0, "Days to push the anchor session back")
	interludeCmd.MarkFlagsMutuallyExclusive("resume", "shift")
	interludeCmd.MarkFlagsOneRequired("resume", "shift")
}

func runInterlude(cmd *cobra.Command, args []string) error {
	opts := session.InterludeOptions{Shift: interludeShift}
	var err error
	if opts.Anchor, err = schedule.ParseDate(args[0]); err != nil {
		return err
	}
	if interludeResume != "" {
		if opts.Resume, err = schedule.ParseDate(interludeResume); err != nil {
			return err
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	remap, err := a.manager.Interlude(opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Success(fmt.Sprintf("Interlude from %s", opts.Anchor)))
	for _, r := range remap.Renamed {
		fmt.Fprintf(out, "  %s -> %s\n", r.From, r.To)
	}
	for _, d := range remap.Dropped {
		fmt.Fprintf(out, "  %s dropped\n", d)
	}
	for _, d := range remap.Added {
		fmt.Fprintf(out, "  %s added\n", d)
	}
	return nil
}

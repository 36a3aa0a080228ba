package main

import (
	"fmt"

	"github.com/amonks/cohort/internal/ui"
	"github.com/amonks/cohort/schedule"
	"github.com/amonks/cohort/session"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure the cohort's schedule",
	Long: `Configure the cohort's schedule from the [cohort] section of cohort.toml.
Flags override the config file. The schedule cannot change once a session
has been held; use cohort interlude instead.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initCohort      int
	initOrientation string
	initDays        classDaysValue
	initWeeks       int
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().IntVar(&initCohort, "cohort", 0, "Cohort number")
	initCmd.Flags().StringVar(&initOrientation, "orientation", "", "Orientation date (dd/mm/yyyy)")
	initCmd.Flags().Var(&initDays, "days", "Three class days, e.g. mon,wed,fri")
	initCmd.Flags().IntVar(&initWeeks, "weeks", 0, "Course length in weeks")
}

// classDaysValue is a pflag.Value holding three weekdays.
type classDaysValue struct {
	days schedule.ClassDays
}

var _ pflag.Value = (*classDaysValue)(nil)

func (v *classDaysValue) String() string {
	if v.days == nil {
		return ""
	}
	return v.days.String()
}

func (v *classDaysValue) Set(value string) error {
	days, err := schedule.ParseClassDays(value)
	if err != nil {
		return err
	}
	v.days = days
	return nil
}

func (v *classDaysValue) Type() string {
	return "days"
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	orientation, days, err := a.cfg.Cohort.Schedule()
	if err != nil {
		return err
	}
	opts := session.InitOptions{
		Cohort:      a.cfg.Cohort.Number,
		Orientation: orientation,
		ClassDays:   days,
		Weeks:       a.cfg.Cohort.Weeks,
	}
	if cmd.Flags().Changed("cohort") {
		opts.Cohort = initCohort
	}
	if cmd.Flags().Changed("orientation") {
		if opts.Orientation, err = schedule.ParseDate(initOrientation); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("days") {
		opts.ClassDays = initDays.days
	}
	if cmd.Flags().Changed("weeks") {
		opts.Weeks = initWeeks
	}

	switch {
	case opts.Orientation.IsZero():
		return fmt.Errorf("%w: orientation date is required (--orientation or [cohort] orientation)", schedule.ErrConfig)
	case len(opts.ClassDays) == 0:
		return fmt.Errorf("%w: class days are required (--days or [cohort] class-days)", schedule.ErrConfig)
	}

	dates, err := a.manager.Init(opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Success(fmt.Sprintf("Cohort %d: %d sessions on %s", opts.Cohort, len(dates), opts.ClassDays)))
	if len(dates) > 0 {
		fmt.Fprintf(out, "First session %s, last session %s\n", dates[0], dates[len(dates)-1])
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/amonks/cohort/internal/ui"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write reports",
}

var exportAttendanceCmd = &cobra.Command{
	Use:   "attendance <path>",
	Short: "Write an .xlsx attendance summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportAttendance,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportAttendanceCmd)
}

func runExportAttendance(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := a.manager.ExportAttendance(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wrote %s", path)))
	return nil
}

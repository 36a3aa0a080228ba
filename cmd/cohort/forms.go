package main

import (
	"context"
	"fmt"
	"io"

	"github.com/amonks/cohort/internal/ui"
	"github.com/amonks/cohort/ledger"
	"github.com/amonks/cohort/session"
	"github.com/spf13/cobra"
)

var cdsCmd = &cobra.Command{
	Use:   "cds",
	Short: "Collect each student's CDS weekday",
}

var cdsIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a form asking students for their CDS day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIssue(cmd, (*session.Manager).IssueCDSForm)
	},
}

var cdsRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Mark each respondent's CDS sessions in the roster",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecord(cmd, "cells", (*session.Manager).RecordCDS)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Collect student details",
}

var updateIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue an onboarding form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIssue(cmd, (*session.Manager).IssueUpdateForm)
	},
}

var updateRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Add new respondents to the roster",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecord(cmd, "students added", (*session.Manager).RecordUpdates)
	},
}

func init() {
	rootCmd.AddCommand(cdsCmd, updateCmd)
	cdsCmd.AddCommand(cdsIssueCmd, cdsRecordCmd)
	updateCmd.AddCommand(updateIssueCmd, updateRecordCmd)
}

func runIssue(cmd *cobra.Command, issue func(*session.Manager, context.Context) (ledger.Artifact, error)) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	artifact, err := issue(a.manager, cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Success(fmt.Sprintf("Issued %q", artifact.Title)))
	fmt.Fprintf(out, "  %s\n", artifact.URL)
	return nil
}

func runRecord(cmd *cobra.Command, unit string, record func(*session.Manager, context.Context) ([]session.Recorded, error)) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := record(a.manager, cmd.Context())
	if err != nil {
		return err
	}
	writeRecorded(cmd.OutOrStdout(), unit, results)
	return nil
}

func writeRecorded(out io.Writer, unit string, results []session.Recorded) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No open forms.")
		return
	}
	for _, r := range results {
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Recorded %q: %d %s", r.Artifact.Title, r.Applied, unit)))
		for _, email := range r.Unknown {
			fmt.Fprintln(out, ui.Warn(fmt.Sprintf("  not on roster: %s", email)))
		}
	}
}

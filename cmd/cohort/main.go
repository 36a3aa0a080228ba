// Package main implements the cohort CLI tool.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultWidth = 80

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err, terminalWidth(os.Stderr))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "cohort",
	Short:         "Track a cohort's sessions, forms, and attendance",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	stateDirFlag string
	rosterFlag   string
	formsDirFlag string
	debugFlag    bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&stateDirFlag, "state-dir", "", "Directory holding the ledger (default ~/.local/state/cohort)")
	flags.StringVar(&rosterFlag, "roster", "", "Roster workbook (default roster.xlsx in the state directory)")
	flags.StringVar(&formsDirFlag, "forms-dir", "", "Directory of the local form service (default forms in the state directory)")
	flags.BoolVar(&debugFlag, "debug", false, "Log at debug level")
}

func printError(w io.Writer, err error, width int) {
	fmt.Fprintln(w, wordwrap.String("cohort: "+err.Error(), width))
}

func terminalWidth(f *os.File) int {
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 20 {
		return width
	}
	return defaultWidth
}

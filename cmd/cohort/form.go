package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/cohort/forms"
	"github.com/amonks/cohort/internal/ui"
	"github.com/spf13/cobra"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Inspect the local form service",
}

var formListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issued forms",
	Args:  cobra.NoArgs,
	RunE:  runFormList,
}

var formRespondCmd = &cobra.Command{
	Use:   "respond <form-id>",
	Short: "Submit a response to a form",
	Long: `Submit a response to a published form on a student's behalf. The form
may be named by any unique prefix of its ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runFormRespond,
}

var (
	formListJSON   bool
	respondEmail   string
	respondName    string
	respondStatus  string
	respondWeekday string
)

func init() {
	rootCmd.AddCommand(formCmd)
	formCmd.AddCommand(formListCmd, formRespondCmd)

	formListCmd.Flags().BoolVar(&formListJSON, "json", false, "Output as JSON")

	formRespondCmd.Flags().StringVar(&respondEmail, "email", "", "Respondent's email")
	formRespondCmd.Flags().StringVar(&respondName, "name", "", "Respondent's name")
	formRespondCmd.Flags().StringVar(&respondStatus, "status", "", "Attendance status")
	formRespondCmd.Flags().StringVar(&respondWeekday, "weekday", "", "Chosen CDS weekday")
	_ = formRespondCmd.MarkFlagRequired("email")
}

func runFormList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := a.forms.List()
	if err != nil {
		return err
	}
	if formListJSON {
		if items == nil {
			items = []forms.Form{}
		}
		return encodeJSON(cmd.OutOrStdout(), items)
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No forms.")
		return nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	prefixes := ui.UniqueIDPrefixLengths(ids)
	now := time.Now()

	builder := ui.NewTableBuilder([]string{"ID", "KIND", "TITLE", "RESPONSES", "CREATED"}, len(items))
	for _, item := range items {
		responses, err := a.forms.FetchResponses(cmd.Context(), item.ID)
		if err != nil {
			return err
		}
		builder.AddRow(
			ui.HighlightID(item.ID, ui.PrefixLength(prefixes, item.ID)),
			item.Kind,
			item.Title,
			strconv.Itoa(len(responses)),
			ui.FormatTimeAgo(item.CreatedAt, now),
		)
	}
	fmt.Fprint(cmd.OutOrStdout(), builder.String())
	return nil
}

func runFormRespond(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := resolveFormID(a.forms, args[0])
	if err != nil {
		return err
	}
	response := forms.Response{
		Email:   respondEmail,
		Name:    respondName,
		Status:  respondStatus,
		Weekday: respondWeekday,
	}
	if err := a.forms.AddResponse(id, response); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Recorded response from %s", strings.TrimSpace(respondEmail))))
	return nil
}

// resolveFormID expands a unique ID prefix to the full form ID.
func resolveFormID(local *forms.Local, prefix string) (string, error) {
	items, err := local.List()
	if err != nil {
		return "", err
	}
	needle := strings.ToLower(strings.TrimSpace(prefix))
	var matched string
	for _, item := range items {
		if !strings.HasPrefix(item.ID, needle) {
			continue
		}
		if item.ID == needle {
			return item.ID, nil
		}
		if matched != "" {
			return "", fmt.Errorf("form id prefix %q is ambiguous", prefix)
		}
		matched = item.ID
	}
	if matched == "" || needle == "" {
		return "", fmt.Errorf("%w: %s", forms.ErrFormNotFound, prefix)
	}
	return matched, nil
}

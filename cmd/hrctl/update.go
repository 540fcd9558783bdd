package main

import (
	"fmt"
	"strings"

	"go-hr-tracker/pkg/client"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <id> <status>",
	Short: "Move a candidate to a new status (admin)",
	Long:  "Move a candidate to SUBMITTED, UNDER_REVIEW, INTERVIEW_SCHEDULED, ACCEPTED or REJECTED. Pass --version to fail if someone else changed the candidate first.",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpdate,
}

var (
	updateFeedback string
	updateVersion  int64
)

func init() {
	updateCmd.Flags().StringVarP(&updateFeedback, "feedback", "m", "", "Feedback shown to the candidate")
	updateCmd.Flags().Int64Var(&updateVersion, "version", 0, "Expected current version")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	v, err := newClient().UpdateStatus(cmd.Context(), args[0], client.StatusUpdate{
		Status:   strings.ToUpper(args[1]),
		Feedback: updateFeedback,
		Version:  updateVersion,
	})
	if err != nil {
		if client.IsKind(err, client.KindConflict) && updateVersion > 0 {
			return fmt.Errorf("%w (run `hrctl show %s` to reload)", err, args[0])
		}
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), v)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s (version %d)\n", v.FullName, v.CurrentStatusDisplay, v.Version)
	return nil
}

package main

import (
	"fmt"
	"text/tabwriter"

	"go-hr-tracker/pkg/client"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates (admin)",
	RunE:  runList,
}

var (
	listPage        int
	listPageSize    int
	listDepartments []string
)

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 0, "Items per page (server default when 0)")
	listCmd.Flags().StringSliceVar(&listDepartments, "department", nil, "Filter by department; repeat or comma separate")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	page, err := newClient().ListCandidates(cmd.Context(), client.ListOptions{
		Page:        listPage,
		PageSize:    listPageSize,
		Departments: listDepartments,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), page)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDEPARTMENT\tEXPERIENCE\tSTATUS\tSUBMITTED")
	for _, c := range page.Results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			c.ID, c.FullName, c.DepartmentDisplay, c.YearsOfExperience, c.CurrentStatusDisplay, c.CreatedAt.Format("2006-01-02"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d candidates)\n", page.Page, page.TotalPages, page.Count)
	return nil
}

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"go-hr-tracker/pkg/client"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var statusCmd = &cobra.Command{
	Use:   "status <id> [id...]",
	Short: "Show the public status of one or more registrations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStatus,
}

var statusConcurrency int

func init() {
	statusCmd.Flags().IntVar(&statusConcurrency, "concurrency", 4, "Parallel lookups")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, ids []string) error {
	c := newClient()
	views := make([]*client.Candidate, len(ids))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(statusConcurrency, 1))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			v, err := c.Status(ctx, id)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			views[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if jsonOutput {
		if len(views) == 1 {
			return printJSON(cmd.OutOrStdout(), views[0])
		}
		return printJSON(cmd.OutOrStdout(), views)
	}
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		printCandidate(cmd.OutOrStdout(), v)
	}
	return nil
}

func printCandidate(out io.Writer, v *client.Candidate) {
	fmt.Fprintf(out, "%s  %s (%s)\n", v.ID, v.FullName, v.DepartmentDisplay)
	if v.Email != "" {
		fmt.Fprintf(out, "E-mail:     %s\n", v.Email)
	}
	fmt.Fprintf(out, "Status:     %s (version %d)\n", v.CurrentStatusDisplay, v.Version)
	fmt.Fprintf(out, "Experience: %d years\n", v.YearsOfExperience)
	fmt.Fprintln(out, "History:")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, sc := range v.StatusChanges {
		from := "-"
		if sc.PreviousStatusDisplay != "" {
			from = sc.PreviousStatusDisplay
		}
		by := sc.AdminUser
		if by == "" {
			by = "system"
		}
		fmt.Fprintf(w, "  %s\t%s -> %s\t%s\t%s\n", sc.CreatedAt.Format("2006-01-02 15:04"), from, sc.NewStatusDisplay, by, sc.Feedback)
	}
	_ = w.Flush()
}

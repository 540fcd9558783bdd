package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Download a candidate's resume (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		return downloadTo(cmd, downloadOut, func(ctx context.Context, w io.Writer) (string, error) {
			return c.DownloadResume(ctx, args[0], w)
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export candidates to xlsx or csv (admin)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := newClient()
		return downloadTo(cmd, downloadOut, func(ctx context.Context, w io.Writer) (string, error) {
			return c.Export(ctx, exportFormat, exportDepartments, w)
		})
	},
}

var (
	downloadOut       string
	exportFormat      string
	exportDepartments []string
)

func init() {
	resumeCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "Output path (default: server filename in the current directory, - for stdout)")
	exportCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "Output path (default: server filename in the current directory, - for stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "xlsx or csv")
	exportCmd.Flags().StringSliceVar(&exportDepartments, "department", nil, "Filter by department")

	rootCmd.AddCommand(resumeCmd, exportCmd)
}

// downloadTo writes to a temp file first so a failed download never leaves a
// truncated file under the final name.
func downloadTo(cmd *cobra.Command, out string, fetch func(context.Context, io.Writer) (string, error)) error {
	if out == "-" {
		_, err := fetch(cmd.Context(), cmd.OutOrStdout())
		return err
	}

	dir := "."
	if out != "" {
		dir = filepath.Dir(out)
	}
	tmp, err := os.CreateTemp(dir, ".hrctl-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	name, err := fetch(cmd.Context(), tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	target := out
	if target == "" {
		target = filepath.Base(name)
		if target == "." || target == "/" || target == "" {
			target = "download"
		}
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", target)
	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go-hr-tracker/pkg/client"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Submit a candidate registration with a resume",
	RunE:  runRegister,
}

var (
	regName       string
	regEmail      string
	regBirthDate  string
	regExperience int
	regDepartment string
	regResume     string
)

func init() {
	registerCmd.Flags().StringVar(&regName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&regEmail, "email", "", "E-mail address")
	registerCmd.Flags().StringVar(&regBirthDate, "dob", "", "Date of birth (YYYY-MM-DD)")
	registerCmd.Flags().IntVar(&regExperience, "experience", 0, "Years of experience")
	registerCmd.Flags().StringVar(&regDepartment, "department", "", "Department (IT, HR, FINANCE)")
	registerCmd.Flags().StringVar(&regResume, "resume", "", "Path to the resume (PDF or DOCX)")
	for _, name := range []string{"name", "email", "dob", "department", "resume"} {
		_ = registerCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, _ []string) error {
	f, err := os.Open(regResume)
	if err != nil {
		return fmt.Errorf("failed to open resume: %w", err)
	}
	defer f.Close()

	id, err := newClient().Register(cmd.Context(), client.Registration{
		FullName:          regName,
		Email:             regEmail,
		DateOfBirth:       regBirthDate,
		YearsOfExperience: regExperience,
		Department:        regDepartment,
		ResumeFilename:    filepath.Base(regResume),
		Resume:            f,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]string{"id": id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered candidate %s\n", id)
	return nil
}

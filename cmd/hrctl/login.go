package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in as an admin and print the bearer token",
	Long:  "Reads the password from stdin and prints a token. Use it with --token or export HRCTL_TOKEN.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var loginOTP string

func init() {
	loginCmd.Flags().StringVar(&loginOTP, "otp", "", "Six digit one-time code, when the account uses TOTP")

	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	password, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && password == "" {
		return fmt.Errorf("password expected on stdin")
	}
	fmt.Fprintln(cmd.ErrOrStderr())

	result, err := newClient().Login(cmd.Context(), args[0], strings.TrimRight(password, "\r\n"), loginOTP)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Token)
	fmt.Fprintf(cmd.ErrOrStderr(), "Token expires at %s\n", result.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

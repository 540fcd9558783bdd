// Package main provides hrctl, a command line client for the candidate tracker API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go-hr-tracker/pkg/client"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "hrctl",
	Short:         "Candidate tracker command line client",
	Long:          "hrctl submits registrations, looks up application status and drives the admin status workflow over the REST API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	baseURL    string
	token      string
	jsonOutput bool
	timeout    time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL (default $HRCTL_BASE_URL or http://localhost:8080/v1)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Admin bearer token (default $HRCTL_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON instead of text")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
}

func newClient() *client.Client {
	url := baseURL
	if url == "" {
		url = os.Getenv("HRCTL_BASE_URL")
	}
	if url == "" {
		url = "http://localhost:8080/v1"
	}
	tok := token
	if tok == "" {
		tok = os.Getenv("HRCTL_TOKEN")
	}
	return client.New(url, client.WithToken(tok), client.WithTimeout(timeout), client.WithRetries(2))
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

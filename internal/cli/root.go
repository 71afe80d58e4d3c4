// Package cli implements the cronkeeper command line interface using cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cronkeeper/internal/app"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "cronkeeper",
	Short: "cronkeeper — managed crontab editing",
	Long: "cronkeeper maintains a crontab document: it tracks its own jobs with\n" +
		"metadata comments, leaves everything else byte-for-byte intact, and\n" +
		"backs the file up before every change.",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(scriptsCmd)
	rootCmd.AddCommand(envCmd)
}

// newApp builds the wired application or exits with the load error.
func newApp() (*app.App, error) {
	a, err := app.New()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return a, nil
}

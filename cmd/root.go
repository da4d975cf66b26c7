// Package cmd provides the command-line interface for the lin CLI tool.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lin",
	Short: "lin is a command-line client for Linear",
	Long: `lin is a CLI tool for working with Linear issues from the terminal.

It accepts the references humans actually type - issue identifiers like
ENG-123, team keys, project and label names, group/label paths like
Priority/High - and resolves them to the canonical IDs the Linear API
requires, batching lookups so each command needs as few round trips as
possible.

Authentication uses the LINEAR_TOKEN environment variable.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
}

// Package main is the entry point for the lin CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/lin/cmd"
	"github.com/danielolaszy/lin/internal/logging"
)

// main is the entry point of the application.
// It executes the root command and handles any errors that occur.
func main() {
	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

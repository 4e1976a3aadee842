// The asynchook command provides utilities for working with the asynchook
// instrumentation library.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "asynchook",
	Short: "Asynchook CLI tool can exercise and inspect the " +
		"asynchronous-resource instrumentation layer.",
	Long: `Asynchook CLI tool can exercise and inspect the ` +
		`asynchronous-resource instrumentation layer. Currently, it supports ` +
		`running an instrumented demo workload with tracing and monitoring.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

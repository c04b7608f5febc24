package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "warpos",
	Short: "WARPOS - versioned task orchestration",
	Long: `WARPOS turns an intent into a locked, inspectable, re-runnable unit of
work: publish versioned task templates, generate schema-validated instances,
prepare execution plans and execute each one exactly once.`,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	homeDir string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Storage root (default $WARPOS_HOME or ~/.warpos)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(instanceCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

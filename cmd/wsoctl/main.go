package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL string
	output string
)

var rootCmd = &cobra.Command{
	Use:   "wsoctl",
	Short: "WSO CLI - Workspace Orchestrator command line tool",
	Long:  `wsoctl is a command line interface for the MBOS Workspace Orchestrator (WSO).`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api-url", "a", "http://localhost:8080", "WSO API URL")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
}

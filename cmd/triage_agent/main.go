// Package main provides the entry point for the FloWorx email triage agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "triage_agent",
	Short: "FloWorx Email Triage Agent",
	Long:  "FloWorx classifies, labels, and routes inbound customer email for trade businesses, provisioning label taxonomies in Gmail/Outlook and deploying n8n automation workflows.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

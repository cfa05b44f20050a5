// Package main implements the clout CLI: lead prioritization against a trusted network and
// outreach drafting with an approval log.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clout",
	Short: "Prioritize leads through your trusted network and draft outreach",
	Long: `clout ranks prospective contacts by how reachable they are through people you trust,
drafts a personalized message for each of them and records your approval decisions.

Data is kept in a local SQLite database (~/.clout/data) unless a PostgreSQL URL is configured.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

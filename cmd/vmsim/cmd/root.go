// Package cmd provides the command-line interface for vmsim.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "vmsim simulates a two-level TLB in front of a page table.",
	Long: `vmsim simulates a two-level, fully-associative TLB with LRU ` +
		`replacement and dirty write back. It runs a workload against the ` +
		`TLB and reports hit, miss, and invalidation statistics together ` +
		`with the simulated time.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Flag defaults can be placed in a .env file.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

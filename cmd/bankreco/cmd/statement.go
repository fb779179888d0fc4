package cmd

import (
	"github.com/spf13/cobra"
)

// statementCmd groups the bank statement commands
var statementCmd = &cobra.Command{
	Use:   "statement",
	Short: "Commands to work with bank statement exports",
	Long:  `Commands to parse bank statement exports and convert them to the ledger import format.`,
}

func init() {
	rootCmd.AddCommand(statementCmd)
}

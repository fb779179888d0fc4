package cmd

import (
	"github.com/spf13/cobra"
)

// reconCmd groups the reconciliation commands
var reconCmd = &cobra.Command{
	Use:   "recon",
	Short: "Commands to reconcile statements against receipts",
	Long:  `Commands to match stored receipts against bank statement rows.`,
}

func init() {
	rootCmd.AddCommand(reconCmd)
}

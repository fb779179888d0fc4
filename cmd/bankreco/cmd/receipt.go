package cmd

import (
	"github.com/spf13/cobra"
)

// receiptCmd groups the receipt store commands
var receiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "Commands to manage stored receipts",
	Long:  `Commands to inspect and clean the local receipt store populated by OCR uploads.`,
}

func init() {
	rootCmd.AddCommand(receiptCmd)
}

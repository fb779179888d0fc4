package cmd

import (
	"github.com/spf13/cobra"
)

var receiptClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Removes every stored receipt",
	Long:  `Removes every receipt from the store. The uploaded images are kept.`,
	Run: func(cmd *cobra.Command, args []string) {
		receiptStore, err := config.newReceiptStore()
		if err != nil {
			wrapFatalln("failed to build receipt store", err)
			return
		}
		if err = receiptStore.Initialize(); err != nil {
			wrapFatalln("failed to initialize receipt store", err)
			return
		}
		defer func() { _ = receiptStore.Close() }()

		removed, err := receiptStore.Clear()
		if err != nil {
			wrapFatalln("failed to clear receipts", err)
			return
		}
		infoLogger.Println("removed", removed, "receipts")
	},
}

func init() {
	receiptCmd.AddCommand(receiptClearCmd)
}

package cmd

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var receiptListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists stored receipts",
	Long:  `Lists every receipt in the store with its extracted amount, date and reference.`,
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

		receipts, err := receiptStore.List()
		if err != nil {
			wrapFatalln("failed to list receipts", err)
			return
		}

		table := uitable.New()
		table.AddRow("ID", "FILE", "AMOUNT", "DATE", "REFERENCE", "UPLOADED")
		for _, r := range receipts {
			amount := ""
			if r.Amount != nil {
				amount = fmt.Sprintf("%.2f", *r.Amount)
			}
			table.AddRow(r.ID, r.Filename, amount, r.DateISO(), r.Reference,
				r.UploadedAt.Format("2006-01-02 15:04:05"))
		}
		infoLogger.Println(table)
	},
}

func init() {
	receiptCmd.AddCommand(receiptListCmd)
}

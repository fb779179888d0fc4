package cmd

import (
	"bytes"
	"encoding/csv"
	"os"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"github.com/bankreco/bankreco/pkg/match"
)

var reconMatchCmd = &cobra.Command{
	Use:   "match <bank csv>",
	Short: "Matches stored receipts against a bank CSV",
	Long: `Matches stored receipts against the rows of a bank CSV export.
Prints the per-row review statuses and a run summary.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			wrapFatalln("failed to read "+args[0], err)
			return
		}
		cr := csv.NewReader(bytes.NewReader(data))
		cr.FieldsPerRecord = -1
		table, err := cr.ReadAll()
		if err != nil {
			wrapFatalln("failed to read bank csv", err)
			return
		}

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

		res, err := match.Match(table, receipts, match.Options{
			DateWindowDays:  params.recon.DateWindowDays,
			AmountTolerance: params.recon.AmountTolerance,
		})
		if err != nil {
			wrapFatalln("matching failed", err)
			return
		}

		if params.recon.Output != "" {
			out, err := yaml.Marshal(res.Rows)
			if err != nil {
				wrapFatalln("failed to serialize rows", err)
				return
			}
			if err := os.WriteFile(params.recon.Output, out, 0644); err != nil {
				wrapFatalln("failed to write "+params.recon.Output, err)
				return
			}
		}

		summary, err := yaml.Marshal(res.Summary)
		if err != nil {
			wrapFatalln("failed to serialize summary", err)
			return
		}
		infoLogger.Println(string(summary))
	},
}

func init() {
	reconMatchCmd.Flags().IntVar(&params.recon.DateWindowDays, "date-window-days",
		match.DefaultDateWindowDays, "receipt date window in days")
	reconMatchCmd.Flags().Float64Var(&params.recon.AmountTolerance, "amount-tol",
		match.DefaultAmountTolerance, "amount tolerance")
	reconMatchCmd.Flags().StringVar(&params.recon.Output, "output", "",
		"write the annotated rows to this yaml file")
	reconCmd.AddCommand(reconMatchCmd)
}

package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bankreco/bankreco/pkg/parser"
	"github.com/bankreco/bankreco/pkg/xero"
)

var statementConvertCmd = &cobra.Command{
	Use:   "convert <statement file> [more files...]",
	Short: "Converts bank statements to the ledger import CSV",
	Long: `Converts one or more bank statement exports (xlsx, xls, csv) to the
ledger import CSV format. The bank layout is detected from the filename.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := os.MkdirAll(params.statement.Dest, 0755); err != nil {
			wrapFatalln("failed to create destination directory", err)
			return
		}
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				wrapFatalln("failed to read "+path, err)
				return
			}
			st, err := parser.Parse(filepath.Base(path), data)
			if err != nil {
				wrapFatalln("failed to parse "+path, err)
				return
			}
			if len(st.Transactions) == 0 {
				infoLogger.Println(path, "->", "no transactions", st.Note)
				continue
			}
			out, err := xero.ToStatementCSV(st.Transactions)
			if err != nil {
				wrapFatalln("failed to convert "+path, err)
				return
			}
			dest := filepath.Join(params.statement.Dest, st.Bank.ExportName(time.Now()))
			if err := os.WriteFile(dest, out, 0644); err != nil {
				wrapFatalln("failed to write "+dest, err)
				return
			}
			infoLogger.Println(path, "->", dest, "(", len(st.Transactions), "rows )")
		}
	},
}

func init() {
	statementConvertCmd.Flags().StringVar(&params.statement.Dest, "dest", "exports",
		"directory the converted CSV files are written to")
	statementCmd.AddCommand(statementConvertCmd)
}

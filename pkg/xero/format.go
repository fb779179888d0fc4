package xero

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"

	"github.com/bankreco/bankreco/pkg/model"
)

// Statement import template columns, in the order the importer expects.
var templateColumns = []string{"*Date", "*Amount", "Payee", "Description", "Reference"}

// ErrNoTransactions is returned when an export is requested for an empty
// statement.
var ErrNoTransactions = errors.New("no transactions provided")

// ToStatementCSV renders parsed transactions as a bank statement import
// CSV. Dates are normalized to yyyy/mm/dd.
func ToStatementCSV(txs []model.Transaction) ([]byte, error) {
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(templateColumns); err != nil {
		return nil, err
	}
	for _, tx := range txs {
		row := []string{
			tx.Date.Format("2006/01/02"),
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			"",
			tx.Description,
			"",
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package remittance parses supplier remittance workbooks: an aged payables
// sheet listing outstanding invoices per supplier, and an optional manual
// payments sheet.
package remittance

import (
	"bytes"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/parser"
	"github.com/xuri/excelize/v2"
)

const (
	sheetAgedPayables   = "Aged Payables Detail"
	sheetManualPayments = "Manual Payments"

	// agedPayablesSkipRows is the report banner above the header row.
	agedPayablesSkipRows = 4
)

// Parse reads one remittance workbook.
func Parse(data []byte) (*model.Remittance, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := &model.Remittance{
		Invoices:       []model.Invoice{},
		ManualPayments: []model.ManualPayment{},
	}
	for _, sheet := range f.GetSheetList() {
		switch sheet {
		case sheetAgedPayables:
			rows, err := f.GetRows(sheet)
			if err != nil {
				return nil, err
			}
			out.Invoices = parseAgedPayables(rows)
		case sheetManualPayments:
			rows, err := f.GetRows(sheet)
			if err != nil {
				return nil, err
			}
			out.ManualPayments = parseManualPayments(rows)
		}
	}
	return out, nil
}

// parseAgedPayables walks the payables report. Supplier names appear on
// rows of their own (first cell set, second empty) and apply to the invoice
// rows beneath them.
func parseAgedPayables(rows [][]string) []model.Invoice {
	if len(rows) <= agedPayablesSkipRows {
		return nil
	}
	rows = rows[agedPayablesSkipRows:]
	header := headerIndex(rows[0])
	refIdx, hasRef := header["invoice reference"]
	totalIdx, hasTotal := header["total"]
	invDateIdx, hasInvDate := header["invoice date"]
	dueDateIdx, hasDueDate := header["due date"]
	if !hasRef || !hasTotal {
		return nil
	}

	invoices := make([]model.Invoice, 0, len(rows))
	var currentSupplier string
	for _, row := range rows[1:] {
		first := cell(row, 0)
		if first != "" && cell(row, 1) == "" {
			currentSupplier = first
			continue
		}
		ref := cellIdx(row, refIdx, hasRef)
		total := parser.CleanCurrency(cellIdx(row, totalIdx, hasTotal))
		if ref == "" || total == nil {
			continue
		}
		invoices = append(invoices, model.Invoice{
			Supplier:      currentSupplier,
			InvoiceNumber: ref,
			InvoiceDate:   isoDate(cellIdx(row, invDateIdx, hasInvDate)),
			DueDate:       isoDate(cellIdx(row, dueDateIdx, hasDueDate)),
			Amount:        *total,
		})
	}
	return invoices
}

func parseManualPayments(rows [][]string) []model.ManualPayment {
	if len(rows) == 0 {
		return nil
	}
	header := headerIndex(rows[0])
	dateIdx, hasDate := header["date"]
	payeeIdx, hasPayee := header["employee/supplier"]
	amountIdx, hasAmount := header["amount"]
	allocIdx, hasAlloc := header["description/account"]
	notesIdx, hasNotes := header["notes"]

	payments := make([]model.ManualPayment, 0, len(rows))
	for _, row := range rows[1:] {
		date := cellIdx(row, dateIdx, hasDate)
		amount := parser.CleanCurrency(cellIdx(row, amountIdx, hasAmount))
		if date == "" || amount == nil {
			continue
		}
		payments = append(payments, model.ManualPayment{
			Date:       isoDate(date),
			Payee:      cellIdx(row, payeeIdx, hasPayee),
			Amount:     *amount,
			Allocation: cellIdx(row, allocIdx, hasAlloc),
			Notes:      cellIdx(row, notesIdx, hasNotes),
		})
	}
	return payments
}

func headerIndex(header []string) map[string]int {
	out := make(map[string]int, len(header))
	for i, c := range header {
		name := strings.ToLower(strings.TrimSpace(c))
		if name == "" {
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = i
		}
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellIdx(row []string, idx int, ok bool) string {
	if !ok {
		return ""
	}
	return cell(row, idx)
}

// isoDate coerces any parseable date to YYYY-MM-DD, or "" when unparseable.
func isoDate(s string) string {
	if s == "" {
		return ""
	}
	d, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return ""
	}
	return d.Format("2006-01-02")
}

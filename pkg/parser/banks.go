package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/status"
)

// Shared helpers for the bank-specific layouts.

var nonNumericRe = regexp.MustCompile(`[^\d.-]`)

// CleanCurrency strips currency symbols, thousand separators and whitespace.
// Returns nil for blank cells.
func CleanCurrency(cell string) *float64 {
	s := strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
	if s == "" {
		return nil
	}
	s = nonNumericRe.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseDateDayFirst parses bank export dates like 11/07/2025 day-first.
func parseDateDayFirst(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	d, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// detectHeaderRow finds the first row where at least two keywords appear.
func detectHeaderRow(rows [][]string, keywords []string) int {
	for idx, row := range rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			c := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(cell, "\n", " ")))
			if c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			continue
		}
		hits := 0
		for _, kw := range keywords {
			for _, cell := range cells {
				if strings.Contains(cell, kw) {
					hits++
					break
				}
			}
		}
		if hits >= 2 {
			return idx
		}
	}
	return -1
}

// canonical column names
const (
	colDate        = "date"
	colDescription = "description"
	colDebit       = "debit"
	colCredit      = "credit"
	colBHD         = "bhd"
)

// normalizeHeaders maps canonical column names to their index in the header
// row. Bank exports mix English and Arabic header text, matching is by
// substring.
func normalizeHeaders(header []string) map[string]int {
	cols := make(map[string]int)
	for i, cell := range header {
		c := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(cell, "\n", " ")))
		switch {
		case strings.Contains(c, "date"):
			setOnce(cols, colDate, i)
		case strings.Contains(c, "description"), strings.Contains(c, "details"):
			setOnce(cols, colDescription, i)
		case strings.Contains(c, "debit"):
			setOnce(cols, colDebit, i)
		case strings.Contains(c, "credit"):
			setOnce(cols, colCredit, i)
		case strings.Contains(c, "bhd"):
			setOnce(cols, colBHD, i)
		}
	}
	return cols
}

func setOnce(cols map[string]int, name string, idx int) {
	if _, ok := cols[name]; !ok {
		cols[name] = idx
	}
}

func cellAt(row []string, idx int, ok bool) string {
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// signedAmount derives the canonical signed amount: debits negative,
// credits positive.
func signedAmount(debit, credit *float64) *float64 {
	switch {
	case debit != nil:
		v := -math.Abs(*debit)
		return &v
	case credit != nil:
		v := math.Abs(*credit)
		return &v
	default:
		return nil
	}
}

// debitCreditRows converts data rows using a normalized header map, the
// common shape shared by the NBB and KFH account layouts.
func debitCreditRows(rows [][]string, cols map[string]int) []model.Transaction {
	dateIdx, hasDate := cols[colDate]
	descIdx, hasDesc := cols[colDescription]
	debitIdx, hasDebit := cols[colDebit]
	creditIdx, hasCredit := cols[colCredit]

	out := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		if len(out) >= maxRows {
			break
		}
		date, ok := parseDateDayFirst(cellAt(row, dateIdx, hasDate))
		if !ok {
			continue
		}
		amount := signedAmount(
			CleanCurrency(cellAt(row, debitIdx, hasDebit)),
			CleanCurrency(cellAt(row, creditIdx, hasCredit)),
		)
		if amount == nil {
			continue
		}
		out = append(out, model.Transaction{
			Date:        date,
			Description: strings.TrimSpace(cellAt(row, descIdx, hasDesc)),
			Amount:      *amount,
		})
	}
	return out
}

// --- Bank-specific layouts ---

func parseNBB(rows [][]string) ([]model.Transaction, error) {
	headerIdx := detectHeaderRow(rows, []string{"transaction", "date", "description", "debit", "credit"})
	if headerIdx < 0 {
		return nil, status.ErrNoHeaderRow
	}
	cols := normalizeHeaders(rows[headerIdx])
	return debitCreditRows(rows[headerIdx+1:], cols), nil
}

func parseKFHAccount(rows [][]string) ([]model.Transaction, error) {
	headerIdx := detectHeaderRow(rows, []string{"date", "description", "debit", "credit"})
	if headerIdx < 0 {
		return nil, status.ErrNoHeaderRow
	}
	cols := normalizeHeaders(rows[headerIdx])
	return debitCreditRows(rows[headerIdx+1:], cols), nil
}

// parseKFHCard reads the credit card layout: the debit column is a marker
// and the BHD column carries the magnitude.
func parseKFHCard(rows [][]string) ([]model.Transaction, error) {
	headerIdx := detectHeaderRow(rows, []string{"transaction", "date", "details", "debit", "credit", "bhd"})
	if headerIdx < 0 {
		return nil, status.ErrNoHeaderRow
	}
	cols := normalizeHeaders(rows[headerIdx])
	dateIdx, hasDate := cols[colDate]
	descIdx, hasDesc := cols[colDescription]
	if !hasDate || !hasDesc {
		return nil, status.ErrNoHeaderRow
	}
	debitIdx, hasDebit := cols[colDebit]
	bhdIdx, hasBHD := cols[colBHD]

	out := make([]model.Transaction, 0, len(rows))
	for _, row := range rows[headerIdx+1:] {
		if len(out) >= maxRows {
			break
		}
		date, ok := parseDateDayFirst(cellAt(row, dateIdx, hasDate))
		if !ok {
			continue
		}
		value := CleanCurrency(cellAt(row, bhdIdx, hasBHD))
		if value == nil {
			continue
		}
		amount := math.Abs(*value)
		if strings.TrimSpace(cellAt(row, debitIdx, hasDebit)) != "" {
			amount = -amount
		}
		out = append(out, model.Transaction{
			Date:        date,
			Description: strings.TrimSpace(cellAt(row, descIdx, hasDesc)),
			Amount:      amount,
		})
	}
	return out, nil
}

var brTagRe = regexp.MustCompile(`(?i)<br\s*/?>`)

// parseKFHBusiness reads the business banking layout: the first row is the
// header and descriptions embed HTML line breaks.
func parseKFHBusiness(rows [][]string) ([]model.Transaction, error) {
	if len(rows) == 0 {
		return nil, status.ErrNoHeaderRow
	}
	cols := normalizeHeaders(rows[0])
	dateIdx, hasDate := cols[colDate]
	descIdx, hasDesc := cols[colDescription]
	debitIdx, hasDebit := cols[colDebit]
	creditIdx, hasCredit := cols[colCredit]

	out := make([]model.Transaction, 0, len(rows))
	for _, row := range rows[1:] {
		date, ok := parseDateDayFirst(cellAt(row, dateIdx, hasDate))
		if !ok {
			continue
		}
		amount := signedAmount(
			CleanCurrency(cellAt(row, debitIdx, hasDebit)),
			CleanCurrency(cellAt(row, creditIdx, hasCredit)),
		)
		if amount == nil {
			continue
		}
		desc := brTagRe.ReplaceAllString(cellAt(row, descIdx, hasDesc), " | ")
		out = append(out, model.Transaction{
			Date:        date,
			Description: strings.TrimSpace(desc),
			Amount:      *amount,
		})
	}
	return out, nil
}

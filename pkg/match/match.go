// Package match pairs stored receipts with the rows of an uploaded bank
// statement. Candidates are selected by amount within a tolerance and by
// date within a window, and each receipt may be consumed at most once;
// ambiguous rows are flagged for human review instead of being guessed at.
package match

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/status"
)

const (
	// DefaultDateWindowDays bounds how far a receipt date may drift from
	// the bank posting date.
	DefaultDateWindowDays = 3
	// DefaultAmountTolerance bounds the absolute amount difference.
	DefaultAmountTolerance = 0.01
)

// Options tune one matching run.
type Options struct {
	DateWindowDays  int
	AmountTolerance float64
}

// Result is one matching run over a bank table.
type Result struct {
	Rows    []model.MatchResult
	Summary model.MatchSummary
}

type candidate struct {
	id        string
	amount    float64
	date      *time.Time
	reference string
	filename  string
}

// Match enriches the bank table (header row + data rows) with receipt
// matches. The date column is mandatory; the amount column is detected or
// synthesized from debit/credit.
func Match(table [][]string, receipts []model.Receipt, opts Options) (*Result, error) {
	if opts.DateWindowDays < 0 {
		opts.DateWindowDays = DefaultDateWindowDays
	}
	if opts.AmountTolerance <= 0 {
		opts.AmountTolerance = DefaultAmountTolerance
	}
	if len(table) == 0 {
		return nil, status.ErrNoHeaderRow
	}
	header := NormalizeHeaders(table[0])
	rows := table[1:]

	dateIdx := detectDateColumn(header)
	if dateIdx < 0 {
		return nil, status.ErrNoDateColumn
	}

	amountIdx := detectAmountColumn(header)
	debitIdx, creditIdx := -1, -1
	amountColumn := ""
	if amountIdx >= 0 {
		amountColumn = header[amountIdx]
	} else {
		debitIdx, creditIdx = detectDebitCredit(header)
		if debitIdx < 0 && creditIdx < 0 {
			return nil, status.ErrNoAmountColumn
		}
		amountColumn = "Credit - Debit"
	}

	// receipts without an amount can never match
	cands := make([]candidate, 0, len(receipts))
	for _, r := range receipts {
		if r.Amount == nil {
			continue
		}
		cands = append(cands, candidate{
			id:        r.ID,
			amount:    math.Abs(*r.Amount),
			date:      r.Date,
			reference: r.Reference,
			filename:  r.Filename,
		})
	}

	res := &Result{
		Rows: make([]model.MatchResult, 0, len(rows)),
		Summary: model.MatchSummary{
			BankRows:         len(rows),
			BankDateColumn:   header[dateIdx],
			BankAmountColumn: amountColumn,
		},
	}
	used := make(map[string]struct{}, len(cands))

	for i, row := range rows {
		mr := model.MatchResult{Row: i}
		bankAmount := rowAmount(row, amountIdx, debitIdx, creditIdx)
		if bankAmount == nil {
			mr.Status = model.StatusNoAmount
			res.Summary.NoCandidates++
			res.Rows = append(res.Rows, mr)
			continue
		}
		bankDate := parseDateSafe(cell(row, dateIdx))

		inTolerance := filterCandidates(cands, *bankAmount, bankDate, opts)
		if len(inTolerance) == 0 {
			mr.Status = model.StatusNoReceipt
			res.Summary.NoCandidates++
			res.Rows = append(res.Rows, mr)
			continue
		}

		// prefer receipts not consumed by an earlier row
		unused := inTolerance[:0:0]
		for _, c := range inTolerance {
			if _, taken := used[c.id]; !taken {
				unused = append(unused, c)
			}
		}

		switch {
		case len(unused) == 1:
			chosen := unused[0]
			used[chosen.id] = struct{}{}
			mr.MatchedReceiptID = chosen.id
			mr.MatchedReceiptRef = chosen.reference
			mr.MatchedReceiptFile = chosen.filename
			if chosen.date != nil {
				mr.MatchedReceiptDate = chosen.date.Format("2006-01-02")
			}
			mr.Status = model.StatusMatched
			res.Summary.Matched++
		case len(unused) > 1:
			mr.Candidates = ids(unused)
			mr.Status = model.StatusMultiple
			res.Summary.MultiCandidates++
		default:
			mr.Candidates = ids(inTolerance)
			mr.Status = model.StatusDuplicate
			res.Summary.DuplicateReceiptUse++
		}
		res.Rows = append(res.Rows, mr)
	}
	return res, nil
}

func filterCandidates(cands []candidate, bankAmount float64, bankDate *time.Time, opts Options) []candidate {
	out := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if math.Abs(math.Abs(bankAmount)-c.amount) > opts.AmountTolerance {
			continue
		}
		// an undated receipt stays a candidate on amount alone
		if bankDate != nil && c.date != nil && !withinDays(*bankDate, *c.date, opts.DateWindowDays) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func ids(cands []candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.id)
	}
	return out
}

func withinDays(d1, d2 time.Time, days int) bool {
	t1 := time.Date(d1.Year(), d1.Month(), d1.Day(), 0, 0, 0, 0, time.UTC)
	t2 := time.Date(d2.Year(), d2.Month(), d2.Day(), 0, 0, 0, 0, time.UTC)
	diff := t1.Sub(t2)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}

func rowAmount(row []string, amountIdx, debitIdx, creditIdx int) *float64 {
	if amountIdx >= 0 {
		return normAmount(cell(row, amountIdx))
	}
	// synthesize: credits positive, debits negative
	var credit, debit float64
	var any bool
	if v := normAmount(cell(row, creditIdx)); v != nil {
		credit, any = *v, true
	}
	if v := normAmount(cell(row, debitIdx)); v != nil {
		debit, any = *v, true
	}
	if !any {
		return nil
	}
	v := credit - debit
	return &v
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// normAmount strips currency strings, thousand separators and
// non-breaking spaces.
func normAmount(s string) *float64 {
	s = strings.ReplaceAll(s, "BHD", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDateSafe(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return nil
	}
	// day-first for bank exports like 11/07/2025
	d, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return nil
	}
	return &d
}

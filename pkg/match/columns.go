package match

import (
	"strings"
)

// Column detection over arbitrary bank CSV exports. Headers are normalized
// first: leading markers like '*' stripped, whitespace collapsed.

func cleanHeader(name string) string {
	n := strings.TrimSpace(name)
	for len(n) > 0 && strings.ContainsRune("*#·•", rune(n[0])) {
		n = strings.TrimLeft(n[1:], " ")
	}
	return strings.Join(strings.Fields(n), " ")
}

// NormalizeHeaders cleans every header cell, keeping original order.
func NormalizeHeaders(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = cleanHeader(h)
	}
	return out
}

var dateColumnCandidates = map[string]struct{}{
	"Date":             {},
	"Transaction Date": {},
	"Posting Date":     {},
	"Value Date":       {},
	"Statement Date":   {},
}

// detectDateColumn finds a date column by common names, exact match first.
func detectDateColumn(header []string) int {
	for i, c := range header {
		if _, ok := dateColumnCandidates[c]; ok {
			return i
		}
	}
	for i, c := range header {
		if strings.Contains(strings.ToLower(c), "date") {
			return i
		}
	}
	return -1
}

// detectAmountColumn finds a single amount column, or -1 when the export
// splits amounts into debit/credit.
func detectAmountColumn(header []string) int {
	for _, name := range []string{"Amount", "Transaction Amount", "Amt"} {
		for i, c := range header {
			if c == name {
				return i
			}
		}
	}
	for i, c := range header {
		if strings.Contains(strings.ToLower(c), "amount") {
			return i
		}
	}
	return -1
}

var (
	debitNames  = map[string]struct{}{"Debit": {}, "Withdrawal": {}, "Withdrawals": {}, "Outflow": {}, "Paid Out": {}, "Money Out": {}}
	creditNames = map[string]struct{}{"Credit": {}, "Deposit": {}, "Deposits": {}, "Inflow": {}, "Paid In": {}, "Money In": {}}

	debitSubstrings  = []string{"debit", "withdraw", "outflow", "paid out", "money out"}
	creditSubstrings = []string{"credit", "deposit", "inflow", "paid in", "money in"}
)

// detectDebitCredit finds debit and credit columns (or withdrawal/deposit
// synonyms). Either index may be -1.
func detectDebitCredit(header []string) (debit, credit int) {
	debit, credit = -1, -1
	for i, c := range header {
		if _, ok := debitNames[c]; ok {
			debit = i
		}
		if _, ok := creditNames[c]; ok {
			credit = i
		}
	}
	if debit < 0 {
		debit = containsAny(header, debitSubstrings)
	}
	if credit < 0 {
		credit = containsAny(header, creditSubstrings)
	}
	return debit, credit
}

func containsAny(header []string, needles []string) int {
	for i, c := range header {
		cl := strings.ToLower(c)
		for _, n := range needles {
			if strings.Contains(cl, n) {
				return i
			}
		}
	}
	return -1
}

package ocr

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Fields are the reconciliation-relevant values extracted from receipt text.
type Fields struct {
	Amount    *float64
	Date      *time.Time
	Reference string
}

var (
	// decimal amounts with optional thousand separators, e.g. 1,250.00
	amountRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})*(?:\.\d{2})`)
	// day-first dates like 11/07/2025, 11-Jul-25, 3 July 2025
	dateRe = regexp.MustCompile(`(?i)\d{1,2}[-/ ](?:[a-z]{3,9}|\d{1,2})[-/ ]\d{2,4}`)
)

// ExtractFields pulls amount, date and reference from recognized text.
// All fields are best-effort; absent values stay nil or empty.
func ExtractFields(text string) Fields {
	return Fields{
		Amount:    ExtractAmount(text),
		Date:      ExtractDate(text),
		Reference: ExtractReference(text),
	}
}

// ExtractAmount returns the last decimal amount in the text. Receipts print
// the grand total last.
func ExtractAmount(text string) *float64 {
	matches := amountRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	raw := strings.ReplaceAll(matches[len(matches)-1], ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ExtractDate returns the first date-looking token, parsed day-first as in
// regional bank exports.
func ExtractDate(text string) *time.Time {
	m := dateRe.FindString(text)
	if m == "" {
		return nil
	}
	d, err := dateparse.ParseAny(m, dateparse.PreferMonthFirst(false))
	if err != nil {
		return nil
	}
	return &d
}

// ExtractReference returns the first line mentioning a reference.
func ExtractReference(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "Ref") || strings.Contains(strings.ToLower(line), "reference") {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

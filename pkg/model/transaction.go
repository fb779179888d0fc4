package model

import (
	"time"
)

// Transaction is one normalized bank statement row.
//
// Amount is signed: debits are negative, credits positive.
type Transaction struct {
	Date        time.Time `json:"date" yaml:"date"`
	Description string    `json:"description" yaml:"description"`
	Amount      float64   `json:"amount" yaml:"amount"`
}

// BankCode identifies the bank layout a statement was parsed with.
type BankCode string

const (
	// BankNBB is a National Bank of Bahrain account export
	BankNBB BankCode = "NBB"
	// BankKFH is a Kuwait Finance House account export
	BankKFH BankCode = "KFH"
	// BankKFHCard is a Kuwait Finance House credit card export
	BankKFHCard BankCode = "KFH_CC"
	// BankKFHBusiness is a Kuwait Finance House business banking export
	BankKFHBusiness BankCode = "KFH_BIZ"
	// BankGeneric is any statement not matching a known layout
	BankGeneric BankCode = "GEN"
)

// ExportName builds the statement export file name, e.g. NBB20250824.csv.
func (b BankCode) ExportName(at time.Time) string {
	return string(b) + at.Format("20060102") + ".csv"
}

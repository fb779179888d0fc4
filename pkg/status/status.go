// Package status exports errors produced by the bankreco packages.
package status

import (
	"github.com/bankreco/bankreco/pkg/errors"
)

var (
	// ErrUnsupportedFile indicates an upload with an extension no statement parser handles
	ErrUnsupportedFile = errors.New("unsupported file type. Supported: .xlsx, .xls, .csv, .pdf, .ofx")

	// ErrUnknownBankFormat indicates a statement whose filename matches no known bank layout
	ErrUnknownBankFormat = errors.New("bank format not yet supported")

	// ErrNoHeaderRow indicates a statement sheet where no header row could be located
	ErrNoHeaderRow = errors.New("unable to locate header row")

	// ErrNoDateColumn indicates a bank export without a detectable date column
	ErrNoDateColumn = errors.New("could not detect a date column in the uploaded statement")

	// ErrNoAmountColumn indicates a bank export without amount or debit/credit columns
	ErrNoAmountColumn = errors.New("could not detect amount or debit/credit columns in the uploaded statement")

	// ErrNoTokens indicates API access was attempted before the OAuth flow completed
	ErrNoTokens = errors.New("no tokens found, complete the authorization flow first")

	// ErrNoTenant indicates no organisation is connected to the current token
	ErrNoTenant = errors.New("no tenant connected to this token")

	// ErrNoBankAccount indicates no active bank account is available for posting
	ErrNoBankAccount = errors.New("no active bank account found")

	// ErrReceiptNotFound indicates a lookup for an unknown receipt id
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrManifest indicates the requirements manifest could not be read
	ErrManifest = errors.New("requirements manifest not readable")
)

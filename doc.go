// Package bankreco reconciles bank statement exports against payment
// receipts captured through OCR, and posts the reconciled payments to the
// Xero accounting ledger.
//
// The bankreco CLI (cmd/bankreco) provisions its own deployment host,
// converts statements to the ledger import format, manages the receipt
// store and runs the reconciliation web server. The domain packages live
// under pkg/.
package bankreco

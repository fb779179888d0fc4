package xero

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"

	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/status"
)

// Payment orchestration: validate reconciliation lines, build the API
// payloads and post them, keeping an append-only audit trail.

const (
	// LineTypeInvoices allocates a bank line across one or more invoices.
	LineTypeInvoices = "invoices"
	// LineTypeNonInvoice books a bank line as spend or receive money.
	LineTypeNonInvoice = "non_invoice"

	maxReferenceLen = 255
)

// InvoiceAllocation is one invoice share of a bank line, in the invoice
// currency.
type InvoiceAllocation struct {
	InvoiceID string  `json:"invoice_id"`
	Amount    float64 `json:"amount"`
}

// NonInvoiceLine books a bank line directly against an account.
type NonInvoiceLine struct {
	IsSpend     bool   `json:"is_spend"`
	AccountCode string `json:"account_code,omitempty"`
	AccountID   string `json:"account_id,omitempty"`
	ContactID   string `json:"contact_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// PaymentLine is one reconciled bank statement line to post. Amount is the
// signed local bank amount.
type PaymentLine struct {
	BankLineID string              `json:"bank_line_id"`
	Date       string              `json:"date"`
	Amount     float64             `json:"amount"`
	Reference  string              `json:"reference,omitempty"`
	Type       string              `json:"type"`
	Invoices   []InvoiceAllocation `json:"invoices,omitempty"`
	NonInvoice *NonInvoiceLine     `json:"non_invoice,omitempty"`
}

// PostConfig tunes validation.
type PostConfig struct {
	RequireExactTotals *bool    `json:"require_exact_totals,omitempty"`
	AmountTolerance    *float64 `json:"amount_tolerance,omitempty"`
}

// PostRequest is the full posting request.
type PostRequest struct {
	Lines  []PaymentLine `json:"lines"`
	Config *PostConfig   `json:"config,omitempty"`
}

// PreviewItem pairs a built payload with the bank line it came from.
type PreviewItem struct {
	BankLineID string      `json:"bank_line_id"`
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload"`
}

// Validated holds the payloads ready to post.
type Validated struct {
	Payments []model.XeroPayment
	BankTxns []model.XeroBankTransaction
	Preview  []PreviewItem
}

// PostResults carries the raw API responses of one posting run.
type PostResults struct {
	PaymentsResult jsoniter.RawMessage `json:"payments_result,omitempty"`
	BankTxnsResult jsoniter.RawMessage `json:"banktxns_result,omitempty"`
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// PickBankAccount chooses the first active BANK account, optionally
// filtered by a name or code substring.
func PickBankAccount(accounts *model.XeroAccounts, hint string) (*model.XeroAccount, error) {
	var candidates []model.XeroAccount
	for _, a := range accounts.Accounts {
		if a.Type == "BANK" && a.Status == "ACTIVE" {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil, status.ErrNoBankAccount
	}
	if hint != "" {
		needle := strings.ToLower(hint)
		for i := range candidates {
			hay := strings.ToLower(candidates[i].Name + " " + candidates[i].Code)
			if strings.Contains(hay, needle) {
				return &candidates[i], nil
			}
		}
	}
	return &candidates[0], nil
}

func clipReference(ref string) string {
	ref = strings.TrimSpace(ref)
	if len(ref) > maxReferenceLen {
		return ref[:maxReferenceLen]
	}
	return ref
}

// ValidateAndBuild checks every line of the request and builds the payment
// and bank transaction payloads against the given bank account.
//
// Invoice allocations are in the invoice currency. A currency rate is
// derived per line so the local side reconciles to the bank amount exactly.
func ValidateAndBuild(req PostRequest, bankAccountID string) (*Validated, error) {
	tol := decimal.NewFromFloat(0.01)
	requireExact := true
	if req.Config != nil {
		if req.Config.AmountTolerance != nil {
			tol = decimal.NewFromFloat(*req.Config.AmountTolerance)
		}
		if req.Config.RequireExactTotals != nil {
			requireExact = *req.Config.RequireExactTotals
		}
	}

	out := &Validated{}
	for _, ln := range req.Lines {
		localSigned := round2(ln.Amount)
		reference := clipReference(ln.Reference)

		switch ln.Type {
		case LineTypeInvoices:
			if len(ln.Invoices) == 0 {
				return nil, fmt.Errorf("[%s] missing invoice allocations", ln.BankLineID)
			}

			foreignTotal := decimal.Zero
			for _, inv := range ln.Invoices {
				foreignTotal = foreignTotal.Add(round2(inv.Amount))
			}
			foreignTotal = foreignTotal.Round(2)
			if foreignTotal.Sign() <= 0 {
				return nil, fmt.Errorf("[%s] sum of invoice amounts must be > 0", ln.BankLineID)
			}

			localAbs := localSigned.Abs().Round(2)
			if requireExact && localAbs.Sub(foreignTotal).Abs().GreaterThan(tol) {
				return nil, fmt.Errorf(
					"[%s] foreign total %s != local abs %s (tol %s), post fees as a separate non_invoice line or disable require_exact_totals",
					ln.BankLineID, foreignTotal, localAbs, tol)
			}

			rate := localAbs.Div(foreignTotal).Round(6)

			for _, inv := range ln.Invoices {
				amount, _ := round2(inv.Amount).Float64()
				rateF, _ := rate.Float64()
				pay := model.XeroPayment{
					Invoice:      model.XeroInvoiceRef{InvoiceID: inv.InvoiceID},
					Account:      model.XeroAccountRef{AccountID: bankAccountID},
					Date:         ln.Date,
					Amount:       amount,
					Reference:    reference,
					CurrencyRate: rateF,
				}
				out.Payments = append(out.Payments, pay)
				out.Preview = append(out.Preview, PreviewItem{BankLineID: ln.BankLineID, Type: "payment", Payload: pay})
			}

		case LineTypeNonInvoice:
			ni := ln.NonInvoice
			if ni == nil {
				return nil, fmt.Errorf("[%s] missing non_invoice details", ln.BankLineID)
			}
			if ni.IsSpend && ni.ContactID == "" {
				return nil, fmt.Errorf("[%s] contact_id is required for SPEND money transactions", ln.BankLineID)
			}
			if ni.AccountCode == "" && ni.AccountID == "" {
				return nil, fmt.Errorf("[%s] provide either account_code or account_id for non_invoice line", ln.BankLineID)
			}

			desc := ni.Description
			if desc == "" {
				desc = reference
			}
			if desc == "" {
				if ni.IsSpend {
					desc = "Spend Money"
				} else {
					desc = "Receive Money"
				}
			}

			unit, _ := localSigned.Abs().Float64()
			item := model.XeroLineItem{
				Description: desc,
				Quantity:    1,
				UnitAmount:  unit,
				TaxType:     "NONE",
				AccountID:   ni.AccountID,
			}
			if ni.AccountID == "" {
				item.AccountCode = ni.AccountCode
			}

			txnType := "RECEIVE"
			if ni.IsSpend {
				txnType = "SPEND"
			}
			var contact *model.XeroContactRef
			if ni.ContactID != "" {
				contact = &model.XeroContactRef{ContactID: ni.ContactID}
			}
			txn := model.XeroBankTransaction{
				Type:        txnType,
				Contact:     contact,
				Date:        ln.Date,
				Reference:   reference,
				BankAccount: model.XeroAccountRef{AccountID: bankAccountID},
				LineItems:   []model.XeroLineItem{item},
			}
			out.BankTxns = append(out.BankTxns, txn)
			out.Preview = append(out.Preview, PreviewItem{BankLineID: ln.BankLineID, Type: "banktxn", Payload: txn})

		default:
			return nil, fmt.Errorf("[%s] unknown line type: %s", ln.BankLineID, ln.Type)
		}
	}
	return out, nil
}

// Post sends the validated payloads, payments first.
func (c *Client) Post(ctx context.Context, v *Validated, idemSeed string) (*PostResults, error) {
	results := &PostResults{}
	if len(v.Payments) > 0 {
		res, err := c.PostPayments(ctx, v.Payments, idemSeed)
		if err != nil {
			return nil, err
		}
		results.PaymentsResult = res
	}
	if len(v.BankTxns) > 0 {
		res, err := c.PostBankTransactions(ctx, v.BankTxns, idemSeed)
		if err != nil {
			return nil, err
		}
		results.BankTxnsResult = res
	}
	return results, nil
}

// AppendAuditLog appends one JSON line per record to the posting audit log.
func AppendAuditLog(fs afero.Fs, records []interface{}) error {
	path := model.GetPathToAuditLog()
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	for _, r := range records {
		line, err := jsoniter.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := f.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return nil
}

package xero

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/status"
)

func TestPickBankAccount(t *testing.T) {
	accounts := &model.XeroAccounts{Accounts: []model.XeroAccount{
		{AccountID: "a1", Name: "Petty Cash", Type: "CURRENT", Status: "ACTIVE"},
		{AccountID: "a2", Name: "NBB Current", Code: "090", Type: "BANK", Status: "ACTIVE"},
		{AccountID: "a3", Name: "KFH Business", Code: "091", Type: "BANK", Status: "ACTIVE"},
		{AccountID: "a4", Name: "Closed", Type: "BANK", Status: "ARCHIVED"},
	}}

	picked, err := PickBankAccount(accounts, "")
	require.NoError(t, err)
	assert.Equal(t, "a2", picked.AccountID)

	picked, err = PickBankAccount(accounts, "kfh")
	require.NoError(t, err)
	assert.Equal(t, "a3", picked.AccountID)

	// unmatched hint falls back to the first candidate
	picked, err = PickBankAccount(accounts, "hsbc")
	require.NoError(t, err)
	assert.Equal(t, "a2", picked.AccountID)

	_, err = PickBankAccount(&model.XeroAccounts{}, "")
	assert.ErrorIs(t, err, status.ErrNoBankAccount)
}

func TestValidateAndBuildInvoiceLine(t *testing.T) {
	req := PostRequest{Lines: []PaymentLine{{
		BankLineID: "ln1",
		Date:       "2025-07-11",
		Amount:     -2000.00,
		Reference:  "TT 991",
		Type:       LineTypeInvoices,
		Invoices: []InvoiceAllocation{
			{InvoiceID: "inv-1", Amount: 3000.00},
			{InvoiceID: "inv-2", Amount: 2000.00},
		},
	}}}

	v, err := ValidateAndBuild(req, "bank-1")
	require.NoError(t, err)
	require.Len(t, v.Payments, 2)
	assert.Empty(t, v.BankTxns)
	assert.Len(t, v.Preview, 2)

	p := v.Payments[0]
	assert.Equal(t, "inv-1", p.Invoice.InvoiceID)
	assert.Equal(t, "bank-1", p.Account.AccountID)
	assert.Equal(t, 3000.00, p.Amount)
	assert.Equal(t, "TT 991", p.Reference)
	// local 2000 over foreign 5000
	assert.InDelta(t, 0.4, p.CurrencyRate, 1e-9)
}

func TestValidateAndBuildExactTotals(t *testing.T) {
	line := PaymentLine{
		BankLineID: "ln1",
		Date:       "2025-07-11",
		Amount:     -100.00,
		Type:       LineTypeInvoices,
		Invoices:   []InvoiceAllocation{{InvoiceID: "inv-1", Amount: 98.00}},
	}

	_, err := ValidateAndBuild(PostRequest{Lines: []PaymentLine{line}}, "bank-1")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "ln1"))

	relaxed := false
	_, err = ValidateAndBuild(PostRequest{
		Lines:  []PaymentLine{line},
		Config: &PostConfig{RequireExactTotals: &relaxed},
	}, "bank-1")
	assert.NoError(t, err)

	tol := 5.0
	_, err = ValidateAndBuild(PostRequest{
		Lines:  []PaymentLine{line},
		Config: &PostConfig{AmountTolerance: &tol},
	}, "bank-1")
	assert.NoError(t, err)
}

func TestValidateAndBuildNonInvoiceLine(t *testing.T) {
	req := PostRequest{Lines: []PaymentLine{{
		BankLineID: "ln2",
		Date:       "2025-07-12",
		Amount:     -35.50,
		Type:       LineTypeNonInvoice,
		NonInvoice: &NonInvoiceLine{
			IsSpend:     true,
			AccountCode: "4205",
			ContactID:   "contact-1",
			Description: "Bank charges",
		},
	}}}

	v, err := ValidateAndBuild(req, "bank-1")
	require.NoError(t, err)
	require.Len(t, v.BankTxns, 1)
	txn := v.BankTxns[0]
	assert.Equal(t, "SPEND", txn.Type)
	require.NotNil(t, txn.Contact)
	assert.Equal(t, "contact-1", txn.Contact.ContactID)
	require.Len(t, txn.LineItems, 1)
	assert.Equal(t, "Bank charges", txn.LineItems[0].Description)
	assert.Equal(t, 35.50, txn.LineItems[0].UnitAmount)
	assert.Equal(t, "4205", txn.LineItems[0].AccountCode)
	assert.Equal(t, "NONE", txn.LineItems[0].TaxType)
}

func TestValidateAndBuildRejections(t *testing.T) {
	_, err := ValidateAndBuild(PostRequest{Lines: []PaymentLine{{
		BankLineID: "x", Type: LineTypeInvoices,
	}}}, "bank-1")
	assert.Error(t, err)

	_, err = ValidateAndBuild(PostRequest{Lines: []PaymentLine{{
		BankLineID: "x", Type: LineTypeNonInvoice,
		NonInvoice: &NonInvoiceLine{IsSpend: true, AccountCode: "4205"},
	}}}, "bank-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact_id")

	_, err = ValidateAndBuild(PostRequest{Lines: []PaymentLine{{
		BankLineID: "x", Type: LineTypeNonInvoice,
		NonInvoice: &NonInvoiceLine{ContactID: "c"},
	}}}, "bank-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account_code")

	_, err = ValidateAndBuild(PostRequest{Lines: []PaymentLine{{
		BankLineID: "x", Type: "mystery",
	}}}, "bank-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown line type")
}

func TestMakeIdemKeyStable(t *testing.T) {
	k1 := MakeIdemKey("seed", "payments", "{}")
	k2 := MakeIdemKey("seed", "payments", "{}")
	k3 := MakeIdemKey("seed", "banktxns", "{}")
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Len(t, k1, 64)
}

func TestToStatementCSV(t *testing.T) {
	txs := []model.Transaction{
		{Date: time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC), Description: "POS ACME", Amount: -1250.5},
		{Date: time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC), Description: "SALARY", Amount: 3000},
	}
	data, err := ToStatementCSV(txs)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "*Date,*Amount,Payee,Description,Reference", lines[0])
	assert.Equal(t, "2025/07/11,-1250.50,,POS ACME,", lines[1])
	assert.Equal(t, "2025/07/12,3000.00,,SALARY,", lines[2])

	_, err = ToStatementCSV(nil)
	assert.ErrorIs(t, err, ErrNoTransactions)
}

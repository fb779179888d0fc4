package xero

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankreco/bankreco/pkg/model"
)

func testClient(t *testing.T, handler http.Handler) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	s := NewTokenStore(Config{APIBase: srv.URL, TenantID: "tenant-1"}, afero.NewMemMapFs())
	require.NoError(t, s.Save(Tokens{
		AccessToken: "live",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}))
	return NewClient(s), srv.Close
}

func TestClientAccounts(t *testing.T) {
	c, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api.xro/2.0/Accounts", r.URL.Path)
		assert.Equal(t, "Bearer live", r.Header.Get("Authorization"))
		assert.Equal(t, "tenant-1", r.Header.Get("Xero-tenant-id"))
		_, _ = w.Write([]byte(`{"Accounts":[{"AccountID":"a1","Name":"NBB","Type":"BANK","Status":"ACTIVE"}]}`))
	}))
	defer done()

	accounts, err := c.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts.Accounts, 1)
	assert.Equal(t, "a1", accounts.Accounts[0].AccountID)
}

func TestClientUnpaidBills(t *testing.T) {
	c, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api.xro/2.0/Invoices", r.URL.Path)
		assert.Equal(t, `Type=="ACCPAY"&&Status=="AUTHORISED"`, r.URL.Query().Get("where"))
		_, _ = w.Write([]byte(`{"Invoices":[{"InvoiceNumber":"INV-9","Contact":{"Name":"Acme"},"AmountDue":120.5}]}`))
	}))
	defer done()

	bills, err := c.UnpaidBills(context.Background())
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "INV-9", bills[0].InvoiceNumber)
	assert.Equal(t, "Acme", bills[0].Contact.Name)
}

func TestClientPostPaymentsIdempotency(t *testing.T) {
	var keys []string
	c, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api.xro/2.0/Payments", r.URL.Path)
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"Payments"`)
		_, _ = w.Write([]byte(`{"Payments":[]}`))
	}))
	defer done()

	payments := []model.XeroPayment{{
		Invoice: model.XeroInvoiceRef{InvoiceID: "inv-1"},
		Account: model.XeroAccountRef{AccountID: "bank-1"},
		Date:    "2025-07-11",
		Amount:  100,
	}}
	_, err := c.PostPayments(context.Background(), payments, "seed")
	require.NoError(t, err)
	_, err = c.PostPayments(context.Background(), payments, "seed")
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1])
}

func TestClientErrorsSurfaceBody(t *testing.T) {
	c, done := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"Message":"validation failed"}`))
	}))
	defer done()

	_, err := c.PostBankTransactions(context.Background(), []model.XeroBankTransaction{{Type: "SPEND"}}, "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

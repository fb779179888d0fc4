package xero

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/bankreco/bankreco/pkg/model"
)

// Client calls the accounting API on behalf of one connected tenant.
type Client struct {
	tokens *TokenStore
	base   string
	hc     *http.Client
}

// NewClient builds an API client on top of a token store.
func NewClient(tokens *TokenStore) *Client {
	return &Client{
		tokens: tokens,
		base:   tokens.Config().apiBase() + "/api.xro/2.0",
		hc:     &http.Client{Timeout: 60 * time.Second},
	}
}

// MakeIdemKey derives a stable idempotency key from its parts, so that a
// retried batch POST never double-posts.
func MakeIdemKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, idemKey string) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return nil, err
	}

	access, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	tenant, err := c.tokens.TenantID(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+access)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Xero-tenant-id", tenant)
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s failed (%d): %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// Accounts fetches the chart of accounts.
func (c *Client) Accounts(ctx context.Context) (*model.XeroAccounts, error) {
	data, err := c.do(ctx, http.MethodGet, "/Accounts", nil, "")
	if err != nil {
		return nil, err
	}
	var out model.XeroAccounts
	if err := jsoniter.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnpaidBills fetches authorised purchase bills awaiting payment.
func (c *Client) UnpaidBills(ctx context.Context) ([]model.XeroInvoice, error) {
	q := url.Values{"where": {`Type=="ACCPAY"&&Status=="AUTHORISED"`}}
	data, err := c.do(ctx, http.MethodGet, "/Invoices?"+q.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	var out model.XeroInvoices
	if err := jsoniter.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out.Invoices, nil
}

// PostPayments posts a batch of invoice payments. The idempotency key is
// derived from the seed and the serialized body.
func (c *Client) PostPayments(ctx context.Context, payments []model.XeroPayment, idemSeed string) (jsoniter.RawMessage, error) {
	body, err := jsoniter.Marshal(map[string][]model.XeroPayment{"Payments": payments})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/Payments", body, MakeIdemKey(idemSeed, "payments", string(body)))
}

// PostBankTransactions posts a batch of spend or receive money transactions.
func (c *Client) PostBankTransactions(ctx context.Context, txns []model.XeroBankTransaction, idemSeed string) (jsoniter.RawMessage, error) {
	body, err := jsoniter.Marshal(map[string][]model.XeroBankTransaction{"BankTransactions": txns})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/BankTransactions", body, MakeIdemKey(idemSeed, "banktxns", string(body)))
}

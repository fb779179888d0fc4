package model

// Xero API payload types. Field names follow the accounting API wire format.

// XeroAccount is one account returned by GET /Accounts.
type XeroAccount struct {
	AccountID string `json:"AccountID"`
	Code      string `json:"Code,omitempty"`
	Name      string `json:"Name,omitempty"`
	Type      string `json:"Type,omitempty"`
	Status    string `json:"Status,omitempty"`
}

// XeroAccounts is the GET /Accounts envelope.
type XeroAccounts struct {
	Accounts []XeroAccount `json:"Accounts"`
}

// XeroContactRef references a contact by id.
type XeroContactRef struct {
	ContactID string `json:"ContactID,omitempty"`
	Name      string `json:"Name,omitempty"`
}

// XeroInvoice is the subset of invoice fields the reconciliation flow uses.
type XeroInvoice struct {
	InvoiceID     string         `json:"InvoiceID,omitempty"`
	InvoiceNumber string         `json:"InvoiceNumber,omitempty"`
	Contact       XeroContactRef `json:"Contact,omitempty"`
	AmountDue     float64        `json:"AmountDue,omitempty"`
	DueDate       string         `json:"DueDate,omitempty"`
	Type          string         `json:"Type,omitempty"`
	Status        string         `json:"Status,omitempty"`
}

// XeroInvoices is the GET /Invoices envelope.
type XeroInvoices struct {
	Invoices []XeroInvoice `json:"Invoices"`
}

// XeroInvoiceRef references an invoice by id.
type XeroInvoiceRef struct {
	InvoiceID string `json:"InvoiceID"`
}

// XeroAccountRef references an account by id or code.
type XeroAccountRef struct {
	AccountID string `json:"AccountID,omitempty"`
	Code      string `json:"Code,omitempty"`
}

// XeroPayment allocates an amount from a bank account to an invoice.
type XeroPayment struct {
	Invoice      XeroInvoiceRef `json:"Invoice"`
	Account      XeroAccountRef `json:"Account"`
	Date         string         `json:"Date"`
	Amount       float64        `json:"Amount"`
	Reference    string         `json:"Reference,omitempty"`
	CurrencyRate float64        `json:"CurrencyRate,omitempty"`
}

// XeroLineItem is one line of a bank transaction.
type XeroLineItem struct {
	Description string `json:"Description"`
	Quantity    int    `json:"Quantity"`
	UnitAmount  float64 `json:"UnitAmount"`
	TaxType     string `json:"TaxType"`
	AccountID   string `json:"AccountID,omitempty"`
	AccountCode string `json:"AccountCode,omitempty"`
}

// XeroBankTransaction is a SPEND or RECEIVE money transaction.
type XeroBankTransaction struct {
	Type        string          `json:"Type"`
	Contact     *XeroContactRef `json:"Contact,omitempty"`
	Date        string          `json:"Date"`
	Reference   string          `json:"Reference,omitempty"`
	BankAccount XeroAccountRef  `json:"BankAccount"`
	LineItems   []XeroLineItem  `json:"LineItems"`
}

// XeroConnection is one entry returned by GET /connections.
type XeroConnection struct {
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName,omitempty"`
	TenantType string `json:"tenantType,omitempty"`
}

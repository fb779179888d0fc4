package model

// Invoice is one payable invoice line from a remittance workbook.
type Invoice struct {
	Supplier      string  `json:"supplier" yaml:"supplier"`
	InvoiceNumber string  `json:"invoice_number" yaml:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date,omitempty" yaml:"invoice_date,omitempty"`
	DueDate       string  `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Amount        float64 `json:"amount" yaml:"amount"`
}

// ManualPayment is one row from the manual payments sheet of a remittance workbook.
type ManualPayment struct {
	Date       string  `json:"date,omitempty" yaml:"date,omitempty"`
	Payee      string  `json:"payee" yaml:"payee"`
	Amount     float64 `json:"amount" yaml:"amount"`
	Allocation string  `json:"allocation,omitempty" yaml:"allocation,omitempty"`
	Notes      string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Remittance is the parsed content of one remittance workbook.
type Remittance struct {
	Invoices       []Invoice       `json:"invoices" yaml:"invoices"`
	ManualPayments []ManualPayment `json:"manual_payments" yaml:"manual_payments"`
}

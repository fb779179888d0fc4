package model

// ReviewStatus qualifies the outcome of matching one bank row against receipts.
type ReviewStatus string

const (
	// StatusMatched marks a row matched to exactly one unused receipt
	StatusMatched ReviewStatus = "Matched via Receipt"
	// StatusNoReceipt marks a row with no candidate receipt
	StatusNoReceipt ReviewStatus = "No Receipt Found"
	// StatusMultiple marks a row with several unused candidates, left for review
	StatusMultiple ReviewStatus = "Multiple Receipt Candidates – Review"
	// StatusDuplicate marks a row whose only candidates were already consumed
	StatusDuplicate ReviewStatus = "Duplicate Receipt Use – Review"
	// StatusNoAmount marks a row without a usable amount
	StatusNoAmount ReviewStatus = "No Amount – Skip"
)

// MatchResult annotates one bank statement row with its receipt match.
type MatchResult struct {
	Row                int          `json:"row" yaml:"row"`
	MatchedReceiptID   string       `json:"matched_receipt_id,omitempty" yaml:"matched_receipt_id,omitempty"`
	MatchedReceiptRef  string       `json:"matched_receipt_ref,omitempty" yaml:"matched_receipt_ref,omitempty"`
	MatchedReceiptDate string       `json:"matched_receipt_date,omitempty" yaml:"matched_receipt_date,omitempty"`
	MatchedReceiptFile string       `json:"matched_receipt_file,omitempty" yaml:"matched_receipt_file,omitempty"`
	Candidates         []string     `json:"receipt_candidates,omitempty" yaml:"receipt_candidates,omitempty"`
	Status             ReviewStatus `json:"review_status" yaml:"review_status"`
}

// MatchSummary aggregates one matching run.
type MatchSummary struct {
	BankRows            int    `json:"bank_rows" yaml:"bank_rows"`
	Matched             int    `json:"matched" yaml:"matched"`
	NoCandidates        int    `json:"no_candidates" yaml:"no_candidates"`
	MultiCandidates     int    `json:"multi_candidates" yaml:"multi_candidates"`
	DuplicateReceiptUse int    `json:"duplicate_receipt_use" yaml:"duplicate_receipt_use"`
	BankDateColumn      string `json:"bank_date_column" yaml:"bank_date_column"`
	BankAmountColumn    string `json:"bank_amount_column" yaml:"bank_amount_column"`
}

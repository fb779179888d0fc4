package model

import (
	"fmt"
	"time"
)

// Receipt is one payment receipt captured through an OCR upload.
//
// Amount and Date are pointers: extraction is best-effort and either field
// may be absent from the recognized text.
type Receipt struct {
	ID         string     `json:"id" yaml:"id"`
	Filename   string     `json:"filename" yaml:"filename"`
	Amount     *float64   `json:"amount" yaml:"amount"`
	Date       *time.Time `json:"date" yaml:"date"`
	Reference  string     `json:"reference,omitempty" yaml:"reference,omitempty"`
	RawText    string     `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
	Source     string     `json:"source,omitempty" yaml:"source,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at" yaml:"uploaded_at"`
}

// ValidateReceipt checks the fields a receipt must carry before it is persisted.
func ValidateReceipt(r Receipt) error {
	if r.ID == "" {
		return fmt.Errorf("empty field: receipt id is empty")
	}
	if r.Filename == "" {
		return fmt.Errorf("empty field: receipt filename is empty")
	}
	return nil
}

// DateISO renders the receipt date as YYYY-MM-DD, or "" when absent.
func (r Receipt) DateISO() string {
	if r.Date == nil {
		return ""
	}
	return r.Date.Format("2006-01-02")
}

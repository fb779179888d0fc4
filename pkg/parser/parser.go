// Package parser ingests bank statement uploads and normalizes them into
// transactions. Each supported bank has its own layout quirks, so routing
// happens on the uploaded filename, as account exports are consistently
// named by the banks' portals.
package parser

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"

	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/status"
	"github.com/xuri/excelize/v2"
)

// Statement is the outcome of parsing one uploaded file.
//
// Tabular uploads carry Transactions. PDF uploads only carry a text preview
// and OFX files pass through untouched, both signalled by Note.
type Statement struct {
	Bank         model.BankCode
	Transactions []model.Transaction
	PreviewText  string
	Note         string
}

// maxRows caps how many transactions a single statement contributes.
const maxRows = 100

// Parse routes the uploaded file to the right reader by extension.
func Parse(filename string, data []byte) (*Statement, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		rows, err := readExcel(data)
		if err != nil {
			return nil, err
		}
		return routeBankParser(filename, rows)
	case ".csv":
		rows, err := readCSV(data)
		if err != nil {
			return nil, err
		}
		return routeBankParser(filename, rows)
	case ".pdf":
		return parsePDFPreview(data), nil
	case ".ofx":
		return &Statement{Bank: model.BankGeneric, Note: "OFX file upload accepted (no parsing needed)."}, nil
	default:
		return nil, status.ErrUnsupportedFile
	}
}

// routeBankParser picks the bank-specific layout from the filename.
func routeBankParser(filename string, rows [][]string) (*Statement, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "nbb"):
		txs, err := parseNBB(rows)
		return &Statement{Bank: model.BankNBB, Transactions: txs}, err
	case strings.Contains(name, "kfh") && strings.Contains(name, "account"):
		txs, err := parseKFHAccount(rows)
		return &Statement{Bank: model.BankKFH, Transactions: txs}, err
	case strings.Contains(name, "kfh") && strings.Contains(name, "card"):
		txs, err := parseKFHCard(rows)
		return &Statement{Bank: model.BankKFHCard, Transactions: txs}, err
	case strings.Contains(name, "kfh") && strings.Contains(name, "business"):
		txs, err := parseKFHBusiness(rows)
		return &Statement{Bank: model.BankKFHBusiness, Transactions: txs}, err
	default:
		return nil, status.ErrUnknownBankFormat
	}
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func readExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, status.ErrNoHeaderRow
	}
	return f.GetRows(sheets[0])
}

func parsePDFPreview(data []byte) *Statement {
	preview := data
	if len(preview) > 2000 {
		preview = preview[:2000]
	}
	text := strings.ToValidUTF8(string(preview), "")
	if len(text) > 1000 {
		text = text[:1000]
	}
	return &Statement{Bank: model.BankGeneric, PreviewText: text, Note: "PDF preview only"}
}

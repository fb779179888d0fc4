package parser

import (
	"testing"

	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const nbbCSV = `Account Statement,,,,
Period,01/07/2025,31/07/2025,,
Transaction Date,Description,Debit,Credit,Balance
11/07/2025,POS PURCHASE ACME,"1,250.00",,8750.00
12/07/2025,SALARY CREDIT,,"3,000.00",11750.00
,TOTALS,,,
`

func TestParseNBBStatement(t *testing.T) {
	st, err := Parse("nbb_statement_july.csv", []byte(nbbCSV))
	require.NoError(t, err)
	assert.Equal(t, model.BankNBB, st.Bank)
	require.Len(t, st.Transactions, 2)

	assert.Equal(t, "POS PURCHASE ACME", st.Transactions[0].Description)
	assert.InDelta(t, -1250.00, st.Transactions[0].Amount, 0.001)
	assert.Equal(t, 11, st.Transactions[0].Date.Day())

	assert.InDelta(t, 3000.00, st.Transactions[1].Amount, 0.001)
}

const kfhCardCSV = `KFH Credit Card,,,,
Transaction Date,Details,Debit,Credit,BHD
02/07/2025,RESTAURANT PAYMENT,X,,45.500
05/07/2025,REFUND,,X,10.000
`

func TestParseKFHCardStatement(t *testing.T) {
	st, err := Parse("kfh_card_export.csv", []byte(kfhCardCSV))
	require.NoError(t, err)
	assert.Equal(t, model.BankKFHCard, st.Bank)
	require.Len(t, st.Transactions, 2)

	assert.InDelta(t, -45.5, st.Transactions[0].Amount, 0.001)
	assert.InDelta(t, 10.0, st.Transactions[1].Amount, 0.001)
}

const kfhBusinessCSV = `Date,Description,Debit,Credit
15/07/2025,TRANSFER<br/>TO SUPPLIER,500.00,
16/07/2025,CUSTOMER DEPOSIT,,750.00
`

func TestParseKFHBusinessStatement(t *testing.T) {
	st, err := Parse("kfh_business_acct.csv", []byte(kfhBusinessCSV))
	require.NoError(t, err)
	assert.Equal(t, model.BankKFHBusiness, st.Bank)
	require.Len(t, st.Transactions, 2)

	assert.Equal(t, "TRANSFER | TO SUPPLIER", st.Transactions[0].Description)
	assert.InDelta(t, -500.0, st.Transactions[0].Amount, 0.001)
}

func TestParseKFHAccountExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	cells := [][]interface{}{
		{"KFH Account Statement", "", "", ""},
		{"Date التاريخ", "Description التفاصيل", "Debits الدائنين", "Credits المدينين"},
		{"20/07/2025", "CHEQUE 1041", "200.00", ""},
		{"21/07/2025", "INWARD REMITTANCE", "", "1,500.00"},
	}
	for r, row := range cells {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	st, err := Parse("kfh_account_july.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, model.BankKFH, st.Bank)
	require.Len(t, st.Transactions, 2)
	assert.InDelta(t, -200.0, st.Transactions[0].Amount, 0.001)
	assert.InDelta(t, 1500.0, st.Transactions[1].Amount, 0.001)
}

func TestParseRouting(t *testing.T) {
	_, err := Parse("statement.txt", []byte("whatever"))
	assert.ErrorIs(t, err, status.ErrUnsupportedFile)

	_, err = Parse("mystery_bank.csv", []byte("Date,Amount\n"))
	assert.ErrorIs(t, err, status.ErrUnknownBankFormat)

	st, err := Parse("export.ofx", []byte("<OFX></OFX>"))
	require.NoError(t, err)
	assert.NotEmpty(t, st.Note)
	assert.Empty(t, st.Transactions)

	st, err = Parse("scan.pdf", []byte("%PDF-1.4 fake content"))
	require.NoError(t, err)
	assert.Contains(t, st.PreviewText, "%PDF-1.4")
}

func TestParseNBBMissingHeader(t *testing.T) {
	_, err := Parse("nbb_data.csv", []byte("just,some,cells\n1,2,3\n"))
	assert.ErrorIs(t, err, status.ErrNoHeaderRow)
}

func TestCleanCurrency(t *testing.T) {
	v := CleanCurrency(" BHD 1,234.56 ")
	require.NotNil(t, v)
	assert.InDelta(t, 1234.56, *v, 0.001)

	assert.Nil(t, CleanCurrency(""))
	assert.Nil(t, CleanCurrency("  "))
	assert.Nil(t, CleanCurrency("n/a"))

	neg := CleanCurrency("-42.00")
	require.NotNil(t, neg)
	assert.InDelta(t, -42.0, *neg, 0.001)
}

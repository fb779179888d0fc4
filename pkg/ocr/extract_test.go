package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReceipt = `ACME TRADING WLL
Date: 11/07/2025
Item A            12.00
Item B         1,238.00
TOTAL          1,250.00
Ref: INV-00042
Thank you`

func TestExtractAmount(t *testing.T) {
	amt := ExtractAmount(sampleReceipt)
	require.NotNil(t, amt)
	// the last amount wins, receipts print the total last
	assert.InDelta(t, 1250.00, *amt, 0.001)

	assert.Nil(t, ExtractAmount("no numbers here"))
	assert.Nil(t, ExtractAmount("integer only 1250"))
}

func TestExtractDate(t *testing.T) {
	d := ExtractDate(sampleReceipt)
	require.NotNil(t, d)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, 7, int(d.Month()))
	assert.Equal(t, 11, d.Day())

	named := ExtractDate("Paid on 3 July 2025 by card")
	require.NotNil(t, named)
	assert.Equal(t, 3, named.Day())

	assert.Nil(t, ExtractDate("no date at all"))
}

func TestExtractReference(t *testing.T) {
	assert.Equal(t, "Ref: INV-00042", ExtractReference(sampleReceipt))
	assert.Equal(t, "payment reference ABC", ExtractReference("first line\npayment reference ABC\n"))
	assert.Empty(t, ExtractReference("nothing relevant"))
}

func TestExtractFields(t *testing.T) {
	f := ExtractFields(sampleReceipt)
	require.NotNil(t, f.Amount)
	require.NotNil(t, f.Date)
	assert.Equal(t, "Ref: INV-00042", f.Reference)
}

package cmd

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCmd executes the root command with args, capturing infoLogger output.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	saved := infoLogger
	infoLogger = log.New(&buf, "", 0)
	defer func() { infoLogger = saved }()

	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func useTempConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "bankreco.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"loglevel: none\nstore: localfs\nstorePath: "+filepath.Join(dir, "state")+"\n"), 0600))
	t.Setenv("BANKRECO_CONFIG", cfg)
}

func TestVersionCommand(t *testing.T) {
	useTempConfig(t)
	out := runCmd(t, "version")
	assert.Contains(t, out, "Version: dev")
}

func TestReceiptClearAndList(t *testing.T) {
	useTempConfig(t)

	out := runCmd(t, "receipt", "clear")
	assert.Contains(t, out, "removed 0 receipts")

	out = runCmd(t, "receipt", "list")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "FILE")
}

func TestReconMatchCommand(t *testing.T) {
	useTempConfig(t)

	dir := t.TempDir()
	bankCSV := filepath.Join(dir, "bank.csv")
	require.NoError(t, os.WriteFile(bankCSV, []byte(
		"Date,Amount,Description\n11/07/2025,-100.00,POS\n"), 0600))

	out := runCmd(t, "recon", "match", bankCSV)
	assert.Contains(t, out, "bank_rows: 1")
	assert.Contains(t, out, "matched: 0")
}

func TestStatementConvertCommand(t *testing.T) {
	useTempConfig(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "nbb_statement.csv")
	require.NoError(t, os.WriteFile(src, []byte(
		"Date,Description,Debit,Credit\n11/07/2025,POS ACME,1250.00,\n"), 0600))

	dest := filepath.Join(dir, "out")
	out := runCmd(t, "statement", "convert", src, "--dest", dest)
	assert.Contains(t, out, "1 rows")

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "NBB")
}

package bdgr

import (
	"testing"
	"time"

	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) store.ReceiptStore {
	t.Helper()
	s := New(t.TempDir())
	require.NoError(t, s.Initialize())
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func testReceipt(id string, uploaded time.Time) model.Receipt {
	amount := 99.9
	return model.Receipt{ID: id, Filename: id + ".jpg", Amount: &amount, UploadedAt: uploaded}
}

func TestAddGetRoundTrip(t *testing.T) {
	s := openStore(t)

	r := testReceipt("r1", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Add(r))

	got, err := s.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Filename, got.Filename)
	require.NotNil(t, got.Amount)
	assert.Equal(t, *r.Amount, *got.Amount)
}

func TestAddDuplicate(t *testing.T) {
	s := openStore(t)
	r := testReceipt("dup", time.Now())
	require.NoError(t, s.Add(r))
	assert.ErrorIs(t, s.Add(r), store.ReceiptAlreadyExists)
}

func TestErrorRewrites(t *testing.T) {
	s := openStore(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, store.ReceiptNotFound)

	_, err = s.Get("")
	assert.ErrorIs(t, err, store.IDIsRequired)

	assert.ErrorIs(t, s.Add(model.Receipt{}), store.IDIsRequired)
}

func TestListAndClear(t *testing.T) {
	s := openStore(t)
	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Add(testReceipt("b", base.Add(time.Minute))))
	require.NoError(t, s.Add(testReceipt("a", base)))

	receipts, err := s.List()
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "a", receipts[0].ID)
	assert.Equal(t, "b", receipts[1].ID)

	removed, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	receipts, err = s.List()
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

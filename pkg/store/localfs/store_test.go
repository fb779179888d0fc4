package localfs

import (
	"testing"
	"time"

	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReceipt(id string, uploaded time.Time) model.Receipt {
	amount := 12.5
	return model.Receipt{
		ID:         id,
		Filename:   id + ".png",
		Amount:     &amount,
		UploadedAt: uploaded,
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.NoError(t, s.Initialize())
	require.NoError(t, s.Add(testReceipt("r1", time.Now())))
	require.NoError(t, s.Initialize())

	receipts, err := s.List()
	require.NoError(t, err)
	assert.Len(t, receipts, 1)
}

func TestAddAndGet(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.NoError(t, s.Initialize())

	r := testReceipt("r1", time.Now())
	require.NoError(t, s.Add(r))

	got, err := s.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, r.Filename, got.Filename)

	err = s.Add(r)
	assert.ErrorIs(t, err, store.ReceiptAlreadyExists)

	err = s.Add(model.Receipt{})
	assert.ErrorIs(t, err, store.IDIsRequired)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, store.ReceiptNotFound)
}

func TestListSortsByUploadTime(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.NoError(t, s.Initialize())

	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Add(testReceipt("later", base.Add(time.Hour))))
	require.NoError(t, s.Add(testReceipt("earlier", base)))

	receipts, err := s.List()
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "earlier", receipts[0].ID)
	assert.Equal(t, "later", receipts[1].ID)
}

func TestClearReportsRemovedCount(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.NoError(t, s.Initialize())
	require.NoError(t, s.Add(testReceipt("r1", time.Now())))
	require.NoError(t, s.Add(testReceipt("r2", time.Now())))

	removed, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	receipts, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

// Package localfs persists receipts as a single JSON document on a local
// file system, the layout the original deployment used.
package localfs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/store"
	"github.com/spf13/afero"
)

const receiptsFile = "receipts.json"

// New creates a receipt store backed by the given file system. A nil fs
// defaults to ./.bankreco/receipts on the OS file system.
func New(fs afero.Fs) store.ReceiptStore {
	if fs == nil {
		base := filepath.Join(".bankreco", "receipts")
		_ = os.MkdirAll(base, 0755)
		fs = afero.NewBasePathFs(afero.NewOsFs(), base)
	}
	return &localFS{fs: fs}
}

type localFS struct {
	fs afero.Fs
	mu sync.Mutex
}

func (l *localFS) Initialize() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.fs.Stat(receiptsFile)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return l.save([]model.Receipt{})
}

func (l *localFS) Close() error {
	return nil
}

func (l *localFS) Add(r model.Receipt) error {
	if r.ID == "" {
		return store.IDIsRequired
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	receipts, err := l.load()
	if err != nil {
		return err
	}
	for _, existing := range receipts {
		if existing.ID == r.ID {
			return store.ReceiptAlreadyExists
		}
	}
	receipts = append(receipts, r)
	return l.save(receipts)
}

func (l *localFS) Get(id string) (*model.Receipt, error) {
	if id == "" {
		return nil, store.IDIsRequired
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	receipts, err := l.load()
	if err != nil {
		return nil, err
	}
	for i := range receipts {
		if receipts[i].ID == id {
			return &receipts[i], nil
		}
	}
	return nil, store.ReceiptNotFound
}

func (l *localFS) List() ([]model.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	receipts, err := l.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].UploadedAt.Before(receipts[j].UploadedAt)
	})
	return receipts, nil
}

func (l *localFS) Clear() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	receipts, err := l.load()
	if err != nil {
		return 0, err
	}
	if err := l.save([]model.Receipt{}); err != nil {
		return 0, err
	}
	return len(receipts), nil
}

func (l *localFS) load() ([]model.Receipt, error) {
	data, err := afero.ReadFile(l.fs, receiptsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Receipt{}, nil
		}
		return nil, err
	}
	var receipts []model.Receipt
	if err := json.Unmarshal(data, &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

func (l *localFS) save(receipts []model.Receipt) error {
	data, err := json.MarshalIndent(receipts, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(l.fs, receiptsFile, data, 0600)
}

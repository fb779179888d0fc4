// Package store defines persistence for parsed receipts.
package store

import (
	"github.com/bankreco/bankreco/pkg/model"
)

type errorString string

func (e errorString) Error() string {
	return string(e)
}

const (
	// IDIsRequired error whenever an id is expected but not provided
	IDIsRequired errorString = "id is required"

	// ReceiptNotFound when a receipt is not found
	ReceiptNotFound errorString = "receipt not found"

	// ReceiptAlreadyExists is returned when a receipt is expected to not exist yet
	ReceiptAlreadyExists errorString = "receipt already exists"
)

// A ReceiptStore manages receipts in a storage mechanism
type ReceiptStore interface {
	Initialize() error
	Close() error

	Add(model.Receipt) error
	Get(id string) (*model.Receipt, error)
	List() ([]model.Receipt, error)
	// Clear drops every receipt and reports how many were removed.
	Clear() (int, error)
}

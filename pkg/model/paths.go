package model

import (
	"fmt"
)

// Store keys for receipts and export artifacts.

// GetArchivePathToReceipt yields the store key for one receipt document.
func GetArchivePathToReceipt(id string) string {
	return fmt.Sprint("receipts/", id, ".json")
}

// GetArchivePathPrefixToReceipts yields the store prefix under which all receipts live.
func GetArchivePathPrefixToReceipts() string {
	return "receipts/"
}

// GetPathToExport yields the relative path of an export artifact.
func GetPathToExport(name string) string {
	return fmt.Sprint("exports/", name)
}

// GetPathToAuditLog yields the relative path of the posting audit log.
func GetPathToAuditLog() string {
	return "exports/xero_post_log.jsonl"
}

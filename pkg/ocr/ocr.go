// Package ocr defines the text recognition contract used by receipt
// ingestion, together with best-effort extraction of the fields
// reconciliation needs (amount, date, reference) from recognized text.
package ocr

import (
	"context"
	"sync"
)

// Input is one image submitted for recognition.
type Input struct {
	// Path of the image on disk. Takes precedence when both are set.
	Path string
	// Image holds raw image bytes.
	Image []byte
	// Languages to recognize, in priority order. Empty means engine default.
	Languages []string
}

// Result is the outcome of recognizing one input.
type Result struct {
	PlainText  string
	Confidence float64
}

// Engine recognizes text on images.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

var (
	defaultEngine Engine
	engineMu      sync.RWMutex
)

// SetDefaultEngine registers the process-wide engine.
func SetDefaultEngine(e Engine) {
	engineMu.Lock()
	defer engineMu.Unlock()
	defaultEngine = e
}

// DefaultEngine returns the registered engine, or nil when none is set.
func DefaultEngine() Engine {
	engineMu.RLock()
	defer engineMu.RUnlock()
	return defaultEngine
}

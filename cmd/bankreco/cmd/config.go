package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/bankreco/bankreco/pkg/store"
	"github.com/bankreco/bankreco/pkg/store/bdgr"
	"github.com/bankreco/bankreco/pkg/store/localfs"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	LogLevel   string `json:"loglevel" yaml:"loglevel"`     // Log level (info, debug, none)
	Store      string `json:"store" yaml:"store"`           // Receipt store backend (localfs, badger)
	StorePath  string `json:"storePath" yaml:"storePath"`   // Root directory for receipts and the badger db
	OCRPackage string `json:"ocrPackage" yaml:"ocrPackage"` // OS package providing the OCR engine
	Manifest   string `json:"manifest" yaml:"manifest"`     // Python requirements manifest
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// newReceiptStore builds the configured receipt store backend.
func (c *CLIConfig) newReceiptStore() (store.ReceiptStore, error) {
	switch c.Store {
	case "badger":
		return bdgr.New(filepath.Join(c.StorePath, "badger")), nil
	default:
		dir := filepath.Join(c.StorePath, "receipts")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		return localfs.New(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
	}
}

package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bankreco/bankreco/pkg/logging"
	"github.com/bankreco/bankreco/pkg/provision"
)

// setupCmd provisions the deployment host.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provisions the host for receipt extraction",
	Long: `Provisions the host for receipt extraction.

Refreshes the OS package index, installs the OCR engine package and installs
the Python dependencies from the requirements manifest. Steps run in order
and the first failure aborts the sequence with a non-zero exit.
`,
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := logging.New(config.LogLevel)
		if err != nil {
			wrapFatalln("invalid log level", err)
			return
		}

		ocrPackage := params.setup.OCRPackage
		if ocrPackage == "" {
			ocrPackage = config.OCRPackage
		}
		manifest := params.setup.Manifest
		if manifest == "" {
			manifest = config.Manifest
		}

		p := provision.New(
			provision.WithOCRPackage(ocrPackage),
			provision.WithManifest(manifest),
			provision.WithLogger(logger),
		)
		err = p.ProvisionWith(cmd.Context(), func(step string, stepErr error) {
			if stepErr != nil {
				color.Red("✗ %s: %v", step, stepErr)
				return
			}
			color.Green("✓ %s", step)
		})
		if err != nil {
			wrapFatalln("setup failed", err)
			return
		}
		infoLogger.Println("setup complete")
	},
}

func init() {
	setupCmd.Flags().StringVar(&params.setup.OCRPackage, "ocr-package", "",
		"OS package providing the OCR engine (default "+provision.DefaultOCRPackage+")")
	setupCmd.Flags().StringVar(&params.setup.Manifest, "manifest", "",
		"path to the Python requirements manifest (default "+provision.DefaultManifest+")")
	rootCmd.AddCommand(setupCmd)
}

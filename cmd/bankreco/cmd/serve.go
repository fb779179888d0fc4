package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bankreco/bankreco/pkg/httpd"
	"github.com/bankreco/bankreco/pkg/logging"
	"github.com/bankreco/bankreco/pkg/web"
	"github.com/bankreco/bankreco/pkg/xero"
)

// serveCmd runs the reconciliation HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the reconciliation web server",
	Long: `Runs the reconciliation web server: statement and receipt uploads,
receipt matching, exports and the accounting ledger flows.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := logging.New(config.LogLevel)
		if err != nil {
			wrapFatalln("invalid log level", err)
			return
		}

		receiptStore, err := config.newReceiptStore()
		if err != nil {
			wrapFatalln("failed to build receipt store", err)
			return
		}
		if err = receiptStore.Initialize(); err != nil {
			wrapFatalln("failed to initialize receipt store", err)
			return
		}

		tokens := xero.NewTokenStore(xero.ConfigFromEnv(), afero.NewOsFs())

		handler := web.InitRouter(web.NewServer(web.ServerParams{
			Store:  receiptStore,
			Tokens: tokens,
			Logger: logger,
		}))

		server := httpd.New(
			httpd.HandlesRequestsWith(handler),
			httpd.LogsWith(logger),
			httpd.OnShutdown(func() {
				if cerr := receiptStore.Close(); cerr != nil {
					logger.Error("failed to close receipt store")
				}
			}),
		)
		if err = server.Serve(); err != nil {
			wrapFatalln("server failed", err)
			return
		}
	},
}

func init() {
	httpd.RegisterFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}

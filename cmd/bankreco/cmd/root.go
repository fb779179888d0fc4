package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bankreco",
	Short: "Bankreco reconciles bank statements against OCR'd receipts",
	Long: `Bankreco ingests bank statement exports and payment receipt images,
normalizes them, matches receipts to statement rows and posts the reconciled
payments to the accounting ledger.

It also provisions its own deployment host: the setup command installs the
OCR engine OS package and the Python dependencies the extraction pipeline
shells out to.
`,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("loglevel", "info")
	viper.SetDefault("store", "localfs")
	viper.SetDefault("storePath", ".bankreco")
	if os.Getenv("BANKRECO_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv("BANKRECO_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.bankreco")
		viper.AddConfigPath("/etc/bankreco")
		viper.SetConfigName("bankreco")
	}

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
}

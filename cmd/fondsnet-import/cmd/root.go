// Package cmd provides the CLI commands for fondsnet-import.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/v-the-cmd/fondsnet-import/internal/config"
	errs "github.com/v-the-cmd/fondsnet-import/internal/errors"
	"github.com/v-the-cmd/fondsnet-import/internal/logging"
)

// Version information - set via ldflags at build time in main.go.
// These are exported so main.go can set them before Execute().
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Persistent flag values.
var (
	configPath string
	verbose    bool
)

// cfg is the loaded pipeline configuration, available to all subcommands.
var cfg *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fondsnet-import",
	Short: "Automatic FONDSNET dealer data import",
	Long: `fondsnet-import keeps the committed FONDSNET contact fixtures in sync
with the dealer configuration list published on the FONDSNET SFTP server.

It downloads the Konfi list workbook, derives the contact fixtures, archives
the raw workbook in S3, and maintains the pull request that delivers the
updated data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

// setup loads the configuration and initializes logging for a command run.
func setup() error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	logConfig := logging.DefaultConfig()
	if verbose {
		logConfig.Level = logging.LevelDebug
	}
	return logging.InitGlobal(logConfig)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
	rootCmd.SetVersionTemplate("fondsnet-import {{.Version}}\n")

	defer func() {
		_ = logging.CloseGlobal()
	}()

	if err := rootCmd.Execute(); err != nil {
		var importErr *errs.ImportError
		if errors.As(err, &importErr) {
			fmt.Fprint(os.Stderr, importErr.Format())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		_ = logging.CloseGlobal()
		os.Exit(1)
	}
}

// Root returns the root command for testing purposes.
func Root() *cobra.Command {
	return rootCmd
}

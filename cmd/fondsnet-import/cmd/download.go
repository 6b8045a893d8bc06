package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	errs "github.com/v-the-cmd/fondsnet-import/internal/errors"
	"github.com/v-the-cmd/fondsnet-import/internal/logging"
	"github.com/v-the-cmd/fondsnet-import/internal/sftpfetch"
)

// downloadCmd represents the download-from-sftp command.
var downloadCmd = &cobra.Command{
	Use:   "download-from-sftp",
	Short: "Download the Konfi list workbook from the FONDSNET SFTP server",
	Long: `Download the Konfi list workbook from the FONDSNET SFTP server and
store it locally.

The private key is read from the configured environment variable or key file.
When the proxy environment variable is set, the connection is routed through
the SOCKS5 proxy.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("path", "", "Where to write the workbook (defaults to the configured download path)")
	rootCmd.AddCommand(downloadCmd)
}

// runDownload handles the download-from-sftp command.
func runDownload(cmd *cobra.Command, args []string) error {
	data, err := fetchWorkbook(cmd)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = cfg.Paths.Download
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(err, errs.ErrConfig, "failed to create download directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(err, errs.ErrConfig, "failed to write workbook file").
			WithDetails("path", path)
	}

	cmd.Printf("Downloaded %d bytes to %s\n", len(data), path)
	return nil
}

// fetchWorkbook downloads the workbook bytes using the loaded configuration.
func fetchWorkbook(cmd *cobra.Command) ([]byte, error) {
	opts, err := sftpfetch.OptionsFromConfig(cfg.SFTP)
	if err != nil {
		return nil, err
	}
	return sftpfetch.Fetch(cmd.Context(), opts, logging.Global())
}

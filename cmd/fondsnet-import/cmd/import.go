package cmd

import (
	"os"

	"github.com/spf13/cobra"

	errs "github.com/v-the-cmd/fondsnet-import/internal/errors"
	"github.com/v-the-cmd/fondsnet-import/internal/importer"
	"github.com/v-the-cmd/fondsnet-import/internal/logging"
	"github.com/v-the-cmd/fondsnet-import/internal/s3store"
)

// importFileCmd represents the import-from-file command.
var importFileCmd = &cobra.Command{
	Use:   "import-from-file",
	Short: "Import contacts from a local workbook file",
	Long: `Import contacts from a workbook file on disk.

Parses the Konfi list, derives the contact fixtures, and rewrites the fixture
file when the data changed. With --upload, the raw workbook is archived in S3
under its content hash.`,
	RunE: runImportFromFile,
}

// importSFTPCmd represents the import-from-sftp command.
var importSFTPCmd = &cobra.Command{
	Use:   "import-from-sftp",
	Short: "Download the Konfi list and import contacts in one step",
	Long: `Download the Konfi list workbook from the FONDSNET SFTP server and
import the contacts without writing the workbook to disk.

With --upload, the raw workbook is archived in S3 under its content hash.`,
	RunE: runImportFromSFTP,
}

func init() {
	importFileCmd.Flags().String("path", "", "Path to the workbook file (defaults to the configured download path)")
	importFileCmd.Flags().Bool("upload", false, "Archive the raw workbook in S3 when the data changed")
	rootCmd.AddCommand(importFileCmd)

	importSFTPCmd.Flags().Bool("upload", false, "Archive the raw workbook in S3 when the data changed")
	rootCmd.AddCommand(importSFTPCmd)
}

// runImportFromFile handles the import-from-file command.
func runImportFromFile(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = cfg.Paths.Download
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(err, errs.ErrConfig, "failed to read workbook file").
			WithDetails("path", path).
			WithSuggestion("Run download-from-sftp first or pass --path")
	}

	return runImport(cmd, data)
}

// runImportFromSFTP handles the import-from-sftp command.
func runImportFromSFTP(cmd *cobra.Command, args []string) error {
	data, err := fetchWorkbook(cmd)
	if err != nil {
		return err
	}
	return runImport(cmd, data)
}

// runImport executes the import pipeline on the workbook bytes.
func runImport(cmd *cobra.Command, data []byte) error {
	var uploader importer.Uploader
	if upload, _ := cmd.Flags().GetBool("upload"); upload {
		store, err := s3store.New(cmd.Context(), cfg.S3, logging.Global())
		if err != nil {
			return err
		}
		uploader = store
	}

	result, err := importer.New(cfg, uploader, logging.Global()).Run(cmd.Context(), data)
	if err != nil {
		return err
	}

	if !result.Changed {
		cmd.Printf("No changes detected (hash %s, %d contacts)\n", result.Hash, result.Contacts)
		return nil
	}

	cmd.Printf("Fixture updated: %d contacts, hash %s\n", result.Contacts, result.Hash)
	if result.UploadURL != "" {
		cmd.Printf("Workbook archived at %s\n", result.UploadURL)
	}
	return nil
}

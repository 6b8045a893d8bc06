package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/v-the-cmd/fondsnet-import/internal/config"
	"github.com/v-the-cmd/fondsnet-import/internal/logging"
	"github.com/v-the-cmd/fondsnet-import/internal/workbook"
)

// newTestRoot creates a fresh command hierarchy for testing.
// This is necessary because Cobra commands maintain state between runs.
func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "fondsnet-import",
		Short: "Automatic FONDSNET dealer data import",
		Long: `fondsnet-import keeps the committed FONDSNET contact fixtures in sync
with the dealer configuration list published on the FONDSNET SFTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			logging.SetGlobal(logging.NewNoop())
			return nil
		},
	}
	root.Version = "test"
	root.SetVersionTemplate("fondsnet-import {{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	versionC := &cobra.Command{
		Use:               "version",
		Short:             "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE:              runVersion,
	}
	versionC.Flags().BoolP("check", "c", false, "Check for available updates")
	root.AddCommand(versionC)

	importFileC := &cobra.Command{
		Use:   "import-from-file",
		Short: "Import contacts from a local workbook file",
		RunE:  runImportFromFile,
	}
	importFileC.Flags().String("path", "", "Path to the workbook file")
	importFileC.Flags().Bool("upload", false, "Archive the raw workbook in S3 when the data changed")
	root.AddCommand(importFileC)

	return root
}

// execute runs the command with args and returns its combined output.
func execute(t *testing.T, root *cobra.Command, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// writeTestWorkbook creates a minimal Konfi list workbook file.
func writeTestWorkbook(t *testing.T, path string) {
	t.Helper()

	headers := []string{
		"Auslöser", "Geschäftsart", "GA ID", "Sparte", "Sparte ID",
		"Produktgeber", "Produktgeber ID", "Produkt", "Produkt ID",
		"E-Mail-Adresse", "VM-NR.", "User Group",
	}
	dataRow := []interface{}{
		"Neugeschäft", "Antrag", 30, "Leben", 1, "HDI", 30, "Produkt A", 100,
		"orders@example.de", "111-222", "Mandant_moneymeets",
	}

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(workbook.SheetName); err != nil {
		t.Fatal(err)
	}
	for col, h := range headers {
		cellName, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetCellValue(workbook.SheetName, cellName, h); err != nil {
			t.Fatal(err)
		}
	}
	for col, v := range dataRow {
		cellName, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetCellValue(workbook.SheetName, cellName, v); err != nil {
			t.Fatal(err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantOutput string
	}{
		{
			name:       "help flag",
			args:       []string{"--help"},
			wantOutput: "Available Commands:",
		},
		{
			name:       "version flag",
			args:       []string{"--version"},
			wantOutput: "fondsnet-import test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, newTestRoot(), tt.args...)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if !strings.Contains(out, tt.wantOutput) {
				t.Errorf("output missing %q:\n%s", tt.wantOutput, out)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, newTestRoot(), "version")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for _, want := range []string{"fondsnet-import", "Commit:", "OS/Arch"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestImportFromFileCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	writeTestWorkbook(t, "konfi.xlsx")
	if err := os.MkdirAll(filepath.Dir(config.DefaultContactsFixture), 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, newTestRoot(), "import-from-file", "--path", "konfi.xlsx")
	if err != nil {
		t.Fatalf("Execute failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "Fixture updated") {
		t.Errorf("expected fixture update message, got:\n%s", out)
	}
	if _, err := os.Stat(config.DefaultContactsFixture); err != nil {
		t.Errorf("expected fixture file to be written: %v", err)
	}

	// A second run with the same data must be a no-op.
	out, err = execute(t, newTestRoot(), "import-from-file", "--path", "konfi.xlsx")
	if err != nil {
		t.Fatalf("second Execute failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "No changes detected") {
		t.Errorf("expected no-change message, got:\n%s", out)
	}
}

func TestImportFromFileCommand_MissingWorkbook(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, newTestRoot(), "import-from-file", "--path", "missing.xlsx")
	if err == nil {
		t.Fatal("expected error for missing workbook file")
	}
}

func TestImportFromFileCommand_MissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, newTestRoot(), "import-from-file", "--config", "nope.yaml", "--path", "x.xlsx")
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

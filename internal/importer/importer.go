// Package importer runs the import pipeline: parse the workbook, derive the
// contact fixtures, and rewrite the committed fixture file when the data
// changed.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/v-the-cmd/fondsnet-import/internal/config"
	"github.com/v-the-cmd/fondsnet-import/internal/contacts"
	errs "github.com/v-the-cmd/fondsnet-import/internal/errors"
	"github.com/v-the-cmd/fondsnet-import/internal/fixture"
	"github.com/v-the-cmd/fondsnet-import/internal/logging"
	"github.com/v-the-cmd/fondsnet-import/internal/workbook"
)

// warnStyle renders the missing-upload warning.
var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

// Uploader archives the raw workbook under its content hash.
type Uploader interface {
	UploadWorkbook(ctx context.Context, hash string, data []byte) (string, error)
}

// Result summarizes one import run.
type Result struct {
	// Hash is the content hash of the imported contact data.
	Hash string
	// Changed reports whether the fixture file was rewritten.
	Changed bool
	// Contacts is the number of contacts after filtering and validation.
	Contacts int
	// UploadURL is the archived workbook location, empty when nothing was
	// uploaded.
	UploadURL string
}

// Importer orchestrates a single import run.
type Importer struct {
	cfg      *config.Config
	uploader Uploader
	log      *logging.Logger

	// out receives user-facing warnings.
	out io.Writer
	// now is the fixture timestamp source.
	now func() time.Time
}

// New creates an importer. The uploader may be nil when uploading is
// disabled for the run.
func New(cfg *config.Config, uploader Uploader, log *logging.Logger) *Importer {
	if log == nil {
		log = logging.Global()
	}
	return &Importer{
		cfg:      cfg,
		uploader: uploader,
		log:      log.WithStage("import"),
		out:      os.Stderr,
		now:      time.Now,
	}
}

// Run imports the workbook bytes. When the derived contact data differs from
// the committed fixture, the fixture file is rewritten and, if an uploader is
// present, the raw workbook is archived under the new hash.
func (i *Importer) Run(ctx context.Context, data []byte) (*Result, error) {
	rows, err := workbook.Parse(data)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrParse, "failed to parse workbook")
	}
	i.log.Info("parsed workbook", "rows", len(rows))

	cs := contacts.Dedupe(contacts.FromRows(rows))
	cs, err = contacts.Validate(cs)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrValidation, "contact validation failed")
	}
	i.log.Info("derived contacts", "contacts", len(cs))

	hash, err := fixture.HashContacts(cs)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrFixture, "failed to hash contacts")
	}

	result := &Result{Hash: hash, Contacts: len(cs)}

	current, err := i.currentStamp()
	if err != nil {
		return nil, err
	}

	// The file is rewritten on every run so its formatting stays normalized;
	// the stamp only moves when the contact data changed.
	stamp := current
	if hash != current.Hash {
		i.log.Info("contact data changed", "old_hash", current.Hash, "new_hash", hash)
		result.Changed = true

		if i.uploader != nil {
			url, err := i.uploader.UploadWorkbook(ctx, hash, data)
			if err != nil {
				return nil, err
			}
			result.UploadURL = url
		} else {
			fmt.Fprintln(i.out, warnStyle.Render("Do not commit the new hash without uploading the matching file!"))
		}

		stamp = fixture.NewStamp(hash, i.now())
	} else {
		i.log.Info("no changes detected", "hash", hash)
	}

	out, err := fixture.Render(stamp, cs)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrFixture, "failed to render fixture")
	}
	if err := os.WriteFile(i.cfg.Paths.ContactsFixture, out, 0o644); err != nil {
		return nil, errs.Wrap(err, errs.ErrFixture, "failed to write fixture file").
			WithDetails("path", i.cfg.Paths.ContactsFixture)
	}

	i.log.Info("fixture file written", "path", i.cfg.Paths.ContactsFixture, "contacts", len(cs), "changed", result.Changed)
	return result, nil
}

// currentStamp reads the stamp of the last import from the committed fixture
// file. A missing file means no previous import.
func (i *Importer) currentStamp() (fixture.ImportStamp, error) {
	data, err := os.ReadFile(i.cfg.Paths.ContactsFixture)
	if os.IsNotExist(err) {
		return fixture.ImportStamp{}, nil
	}
	if err != nil {
		return fixture.ImportStamp{}, errs.Wrap(err, errs.ErrFixture, "failed to read fixture file").
			WithDetails("path", i.cfg.Paths.ContactsFixture)
	}

	stamp, err := fixture.CurrentStamp(data)
	if err != nil {
		return fixture.ImportStamp{}, errs.Wrap(err, errs.ErrFixture, "failed to read import stamp").
			WithDetails("path", i.cfg.Paths.ContactsFixture)
	}
	return stamp, nil
}

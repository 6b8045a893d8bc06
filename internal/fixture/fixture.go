// Package fixture renders and reads the committed FONDSNET contacts fixture.
// The file is a YAML list: one import-stamp document carrying the content
// hash of the last import, followed by one document per contact.
package fixture

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/v-the-cmd/fondsnet-import/internal/contacts"
)

// Header is the first line of every generated fixture file.
const Header = "# auto-generated by fondsnet-import"

// Django model names of the fixture documents.
const (
	ModelImport  = "moneymeets_tenants.fondsnetimport"
	ModelContact = "moneymeets_tenants.fondsnetcontact"
)

// ImportStamp records the content hash and timestamp of the last import that
// changed the contact data.
type ImportStamp struct {
	Hash string `yaml:"hash"`
	Time string `yaml:"time"`
}

// NewStamp creates a stamp for the given content hash at time now.
func NewStamp(hash string, now time.Time) ImportStamp {
	return ImportStamp{
		Hash: hash,
		Time: now.UTC().Format("2006-01-02T15:04:05.000-07:00"),
	}
}

// document is one fixture list entry. Field order matches the committed file:
// fields first, model second.
type document struct {
	Fields interface{} `yaml:"fields"`
	Model  string      `yaml:"model"`
}

// RenderContacts renders only the contact documents. This is the input of the
// content hash, so the stamp itself never influences change detection.
func RenderContacts(cs []contacts.Contact) ([]byte, error) {
	docs := make([]document, 0, len(cs))
	for _, c := range cs {
		docs = append(docs, document{Fields: c, Model: ModelContact})
	}
	out, err := yaml.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to render contacts: %w", err)
	}
	return out, nil
}

// HashContacts returns the sha256 hex digest of the rendered contacts.
func HashContacts(cs []contacts.Contact) (string, error) {
	rendered, err := RenderContacts(cs)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(rendered)
	return hex.EncodeToString(sum[:]), nil
}

// Render produces the complete fixture file: header comment, import stamp,
// then the contact documents.
func Render(stamp ImportStamp, cs []contacts.Contact) ([]byte, error) {
	docs := make([]document, 0, len(cs)+1)
	docs = append(docs, document{Fields: stamp, Model: ModelImport})
	for _, c := range cs {
		docs = append(docs, document{Fields: c, Model: ModelContact})
	}

	body, err := yaml.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to render fixture: %w", err)
	}

	return append([]byte(Header+"\n"), body...), nil
}

// CurrentStamp extracts the import stamp from an existing fixture file.
// Exactly one stamp document must be present.
func CurrentStamp(data []byte) (ImportStamp, error) {
	var docs []document
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return ImportStamp{}, fmt.Errorf("failed to parse fixture: %w", err)
	}

	var stamps []ImportStamp
	for _, doc := range docs {
		if doc.Model != ModelImport {
			continue
		}
		// Re-decode the generic fields into the stamp shape.
		raw, err := yaml.Marshal(doc.Fields)
		if err != nil {
			return ImportStamp{}, fmt.Errorf("failed to read import stamp: %w", err)
		}
		var stamp ImportStamp
		if err := yaml.Unmarshal(raw, &stamp); err != nil {
			return ImportStamp{}, fmt.Errorf("failed to read import stamp: %w", err)
		}
		stamps = append(stamps, stamp)
	}

	if len(stamps) != 1 {
		return ImportStamp{}, fmt.Errorf("expected exactly one %s document, found %d", ModelImport, len(stamps))
	}
	return stamps[0], nil
}

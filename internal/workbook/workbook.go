// Package workbook parses the FONDSNET "AB Konfi-Liste" Excel workbook into
// raw contact rows. Columns are looked up by header name, so column order in
// the delivered file does not matter.
package workbook

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/v-the-cmd/fondsnet-import/internal/contacts"
)

// SheetName is the sheet carrying the contact data.
const SheetName = "Konfi_neu"

// Column headers of the Konfi_neu sheet.
const (
	hdrTrigger        = "Auslöser"
	hdrBusinessType   = "Geschäftsart"
	hdrBusinessTypeID = "GA ID"
	hdrDivision       = "Sparte"
	hdrDivisionID     = "Sparte ID"
	hdrProvider       = "Produktgeber"
	hdrProviderID     = "Produktgeber ID"
	hdrProduct        = "Produkt"
	hdrProductID      = "Produkt ID"
	hdrEmail          = "E-Mail-Adresse"
	hdrDealerNumber   = "VM-NR."
	hdrUserGroup      = "User Group"
)

var requiredHeaders = []string{
	hdrTrigger,
	hdrBusinessType,
	hdrBusinessTypeID,
	hdrDivision,
	hdrDivisionID,
	hdrProvider,
	hdrProviderID,
	hdrProduct,
	hdrProductID,
	hdrEmail,
	hdrDealerNumber,
	hdrUserGroup,
}

// Parse reads the workbook bytes and returns the data rows of the Konfi_neu
// sheet. Cell values are trimmed; blank cells yield empty strings and nil IDs.
func Parse(data []byte) ([]contacts.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", SheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", SheetName)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	result := make([]contacts.Row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header row

		row := contacts.Row{
			Trigger:          cell(cells, columns[hdrTrigger]),
			BusinessTypeName: cell(cells, columns[hdrBusinessType]),
			DivisionName:     cell(cells, columns[hdrDivision]),
			ProviderName:     cell(cells, columns[hdrProvider]),
			ProductName:      cell(cells, columns[hdrProduct]),
			DealerNumber:     cell(cells, columns[hdrDealerNumber]),
			Email:            cell(cells, columns[hdrEmail]),
			UserGroup:        cell(cells, columns[hdrUserGroup]),
		}

		for hdr, dst := range map[string]**int{
			hdrBusinessTypeID: &row.BusinessTypeID,
			hdrDivisionID:     &row.DivisionID,
			hdrProviderID:     &row.ProviderID,
			hdrProductID:      &row.ProductID,
		} {
			v, err := optionalInt(cell(cells, columns[hdr]))
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", rowNum, hdr, err)
			}
			*dst = v
		}

		result = append(result, row)
	}

	return result, nil
}

// mapColumns resolves each required header to its column index.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredHeaders {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("sheet %q is missing columns: %s", SheetName, strings.Join(missing, ", "))
	}

	return columns, nil
}

// cell returns the trimmed value at index, tolerating short rows.
// excelize trims trailing empty cells from each row.
func cell(cells []string, index int) string {
	if index >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[index])
}

// optionalInt parses a trimmed cell into an int, nil when blank.
func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("expected integer, got %q", s)
	}
	return &v, nil
}

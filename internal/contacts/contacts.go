// Package contacts implements the row transformation pipeline for the
// FONDSNET Konfi list: spreadsheet rows are filtered, projected to contact
// records, deduplicated, grouped and reduced to a single contact per
// (company, product, transaction type) key.
package contacts

import (
	"fmt"
	"sort"
	"strings"
)

// UserGroupMandantMoneymeets marks rows maintained for the moneymeets tenant.
// Rows with any other non-empty user group belong to other FONDSNET clients.
const UserGroupMandantMoneymeets = "Mandant_moneymeets"

// TransactionType is the kind of business transaction a contact handles.
type TransactionType string

const (
	// TransactionOrder is a new-business transaction.
	TransactionOrder TransactionType = "ORDER"
	// TransactionChangeOfDealer is a dealer-change transaction.
	TransactionChangeOfDealer TransactionType = "CHANGE_OF_DEALER"
)

// Trigger values of the Auslöser column. Rows with any other trigger are not
// imported.
const (
	TriggerOrder          = "Neugeschäft"
	TriggerChangeOfDealer = "Maklerwechsel"
)

// Row is one data row of the Konfi_neu sheet. String fields are trimmed and
// empty when the cell is blank; numeric IDs are nil when the cell is blank.
type Row struct {
	Trigger          string // Auslöser
	BusinessTypeName string // Geschäftsart
	BusinessTypeID   *int   // GA ID
	DivisionName     string // Sparte
	DivisionID       *int   // Sparte ID
	ProviderName     string // Produktgeber
	ProviderID       *int   // Produktgeber ID
	ProductName      string // Produkt
	ProductID        *int   // Produkt ID
	DealerNumber     string // VM-NR.
	Email            string // E-Mail-Adresse
	UserGroup        string // User Group
}

// Contact is one normalized fixture record. The yaml tags define the field
// order of the committed fixture file.
type Contact struct {
	TransactionType TransactionType `yaml:"transaction_type"`
	CompanyID       int             `yaml:"fondsnet_company_id"`
	ProduktID       int             `yaml:"fondsnet_produkt_id"`
	GeschaeftsartID *int            `yaml:"fondsnet_geschaeftsart_id"`
	Email           string          `yaml:"email"`
	DealerNumber    string          `yaml:"dealer_number"`
	UserGroup       string          `yaml:"-"`
}

// MultipleContactsError reports more than one surviving contact for a group key.
type MultipleContactsError struct {
	CompanyID       int
	ProduktID       int
	TransactionType TransactionType
	Contacts        []Contact
}

func (e *MultipleContactsError) Error() string {
	return fmt.Sprintf("multiple contacts for company=%d produkt=%d transaction_type=%s (%d candidates)",
		e.CompanyID, e.ProduktID, e.TransactionType, len(e.Contacts))
}

// InvalidEmailError reports a contact with a syntactically invalid email.
type InvalidEmailError struct {
	CompanyID int
	ProduktID int
	Email     string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("invalid email %q for company=%d produkt=%d", e.Email, e.CompanyID, e.ProduktID)
}

// Email domains excluded from the import. The excluded insurers route their
// own transactions; importing their contacts would misdirect business.
var excludedEmailSuffixes = []string{
	"@axa-art.de",
	"@pharmassec.de",
	"@fondsnet.de",
}

// Products excluded from the import.
var excludedProductIDs = map[int]bool{
	10189: true,
	10191: true,
}

// Dealer numbers known to be duplicated on the FONDSNET side.
var excludedDealerNumbers = map[string]bool{
	"58.20016.6 - keine courtagepflichtige Übertragung möglich!": true,
}

// dealerOverrideKey identifies a (dealer number, provider) pair with a
// deviating dealer number.
type dealerOverrideKey struct {
	dealerNumber string
	providerID   int
}

// HDI uses a different dealer number for order and change-of-dealer business.
var dealerOverrides = map[dealerOverrideKey]string{
	{dealerNumber: "228-101103", providerID: 30}: "759812",
}

// FromRows filters the sheet rows and projects the remaining ones to
// contacts. A row survives when it belongs to the moneymeets tenant, has an
// accepted trigger, carries both provider and product IDs, and matches none
// of the exclusion rules.
func FromRows(rows []Row) []Contact {
	var result []Contact
	for _, row := range rows {
		if !keep(row) {
			continue
		}

		transactionType := TransactionOrder
		if row.Trigger == TriggerChangeOfDealer {
			transactionType = TransactionChangeOfDealer
		}

		dealerNumber := row.DealerNumber
		if override, ok := dealerOverrides[dealerOverrideKey{row.DealerNumber, *row.ProviderID}]; ok {
			dealerNumber = override
		}

		result = append(result, Contact{
			TransactionType: transactionType,
			CompanyID:       *row.ProviderID,
			ProduktID:       *row.ProductID,
			GeschaeftsartID: row.BusinessTypeID,
			Email:           row.Email,
			DealerNumber:    dealerNumber,
			UserGroup:       row.UserGroup,
		})
	}
	return result
}

// keep reports whether a row passes all import filters.
func keep(row Row) bool {
	if row.UserGroup != "" && row.UserGroup != UserGroupMandantMoneymeets {
		return false
	}
	if row.Trigger != TriggerOrder && row.Trigger != TriggerChangeOfDealer {
		return false
	}
	if row.ProviderID == nil || row.ProductID == nil {
		return false
	}
	for _, suffix := range excludedEmailSuffixes {
		if row.Email != "" && strings.HasSuffix(strings.ToLower(row.Email), suffix) {
			return false
		}
	}
	if excludedProductIDs[*row.ProductID] {
		return false
	}
	if excludedDealerNumbers[row.DealerNumber] {
		return false
	}
	// FONDSNET has special bKV dealer numbers for AXA, we don't support this
	// product type.
	if *row.ProductID == 188 && *row.ProviderID == 8 {
		return false
	}
	return true
}

// Dedupe removes duplicate contacts and sorts the result deterministically.
func Dedupe(contacts []Contact) []Contact {
	type key struct {
		transactionType TransactionType
		companyID       int
		produktID       int
		geschaeftsart   int
		hasGA           bool
		email           string
		dealerNumber    string
		userGroup       string
	}

	seen := make(map[key]bool, len(contacts))
	var result []Contact
	for _, c := range contacts {
		k := key{
			transactionType: c.TransactionType,
			companyID:       c.CompanyID,
			produktID:       c.ProduktID,
			email:           c.Email,
			dealerNumber:    c.DealerNumber,
			userGroup:       c.UserGroup,
		}
		if c.GeschaeftsartID != nil {
			k.geschaeftsart = *c.GeschaeftsartID
			k.hasGA = true
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, c)
	}

	Sort(result)
	return result
}

// Sort orders contacts by all fields, fixture order first.
func Sort(contacts []Contact) {
	sort.Slice(contacts, func(i, j int) bool {
		return less(contacts[i], contacts[j])
	})
}

func less(a, b Contact) bool {
	if a.TransactionType != b.TransactionType {
		return a.TransactionType < b.TransactionType
	}
	if a.CompanyID != b.CompanyID {
		return a.CompanyID < b.CompanyID
	}
	if a.ProduktID != b.ProduktID {
		return a.ProduktID < b.ProduktID
	}
	if ga, gb := gaValue(a), gaValue(b); ga != gb {
		return ga < gb
	}
	if a.Email != b.Email {
		return a.Email < b.Email
	}
	if a.DealerNumber != b.DealerNumber {
		return a.DealerNumber < b.DealerNumber
	}
	return a.UserGroup < b.UserGroup
}

// gaValue orders nil business type IDs before any real one.
func gaValue(c Contact) int {
	if c.GeschaeftsartID == nil {
		return -1 << 31
	}
	return *c.GeschaeftsartID
}

// groupKey identifies the contact group a record belongs to.
type groupKey struct {
	CompanyID       int
	ProduktID       int
	TransactionType TransactionType
}

// Validate groups contacts by (company, product, transaction type) and
// reduces each group to exactly one contact. Within a group, contacts with
// the moneymeets user group win over the rest. A group with more than one
// surviving contact or a contact with an invalid email fails the import.
func Validate(contacts []Contact) ([]Contact, error) {
	groups := make(map[groupKey][]Contact)
	var order []groupKey
	for _, c := range contacts {
		k := groupKey{c.CompanyID, c.ProduktID, c.TransactionType}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], c)
	}

	result := make([]Contact, 0, len(order))
	for _, k := range order {
		group := groups[k]

		var preferred []Contact
		for _, c := range group {
			if c.UserGroup == UserGroupMandantMoneymeets {
				preferred = append(preferred, c)
			}
		}
		if len(preferred) == 0 {
			preferred = group
		}

		if len(preferred) != 1 {
			return nil, &MultipleContactsError{
				CompanyID:       k.CompanyID,
				ProduktID:       k.ProduktID,
				TransactionType: k.TransactionType,
				Contacts:        preferred,
			}
		}

		contact := preferred[0]
		if err := ValidateEmail(contact.Email); err != nil {
			return nil, &InvalidEmailError{
				CompanyID: contact.CompanyID,
				ProduktID: contact.ProduktID,
				Email:     contact.Email,
			}
		}
		result = append(result, contact)
	}

	Sort(result)
	return result, nil
}

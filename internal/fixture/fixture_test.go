package fixture

import (
	"strings"
	"testing"
	"time"

	"github.com/v-the-cmd/fondsnet-import/internal/contacts"
)

func intp(v int) *int { return &v }

func sampleContacts() []contacts.Contact {
	return []contacts.Contact{
		{
			TransactionType: contacts.TransactionChangeOfDealer,
			CompanyID:       5,
			ProduktID:       100,
			GeschaeftsartID: intp(30),
			Email:           "contact@example.de",
			DealerNumber:    "123-456",
		},
		{
			TransactionType: contacts.TransactionOrder,
			CompanyID:       8,
			ProduktID:       200,
			Email:           "übermittlung@beispiel.de",
			DealerNumber:    "789",
		},
	}
}

func TestRender_Format(t *testing.T) {
	stamp := NewStamp("abc123", time.Date(2026, 8, 24, 10, 30, 0, 500_000_000, time.UTC))

	out, err := Render(stamp, sampleContacts())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	text := string(out)

	if !strings.HasPrefix(text, Header+"\n") {
		t.Errorf("expected header comment, got:\n%s", text)
	}

	// The stamp document comes first with fields before model.
	stampIdx := strings.Index(text, "model: moneymeets_tenants.fondsnetimport")
	contactIdx := strings.Index(text, "model: moneymeets_tenants.fondsnetcontact")
	if stampIdx == -1 || contactIdx == -1 || stampIdx > contactIdx {
		t.Errorf("expected stamp document before contact documents:\n%s", text)
	}
	if fieldsIdx := strings.Index(text, "hash: abc123"); fieldsIdx == -1 || fieldsIdx > stampIdx {
		t.Errorf("expected stamp fields before its model line:\n%s", text)
	}

	for _, want := range []string{
		"transaction_type: CHANGE_OF_DEALER",
		"fondsnet_company_id: 5",
		"fondsnet_produkt_id: 100",
		"fondsnet_geschaeftsart_id: 30",
		"fondsnet_geschaeftsart_id: null",
		"dealer_number: 123-456",
		"time: \"2026-08-24T10:30:00.500+00:00\"",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered fixture missing %q:\n%s", want, text)
		}
	}

	// Unicode must survive rendering unescaped.
	if !strings.Contains(text, "übermittlung@beispiel.de") {
		t.Errorf("expected unescaped unicode email:\n%s", text)
	}
}

func TestNewStamp_MillisecondUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	stamp := NewStamp("h", time.Date(2026, 1, 2, 13, 0, 0, 123_000_000, loc))

	if stamp.Time != "2026-01-02T12:00:00.123+00:00" {
		t.Errorf("Time = %q", stamp.Time)
	}
}

func TestHashContacts_Deterministic(t *testing.T) {
	a, err := HashContacts(sampleContacts())
	if err != nil {
		t.Fatalf("HashContacts failed: %v", err)
	}
	b, err := HashContacts(sampleContacts())
	if err != nil {
		t.Fatalf("HashContacts failed: %v", err)
	}
	if a != b {
		t.Errorf("hash not deterministic: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected sha256 hex digest, got %q", a)
	}
}

func TestHashContacts_IgnoresStamp(t *testing.T) {
	cs := sampleContacts()

	hash, err := HashContacts(cs)
	if err != nil {
		t.Fatal(err)
	}

	// Rendering full fixtures with different stamps must not affect the hash.
	out1, err := Render(NewStamp("x", time.Now()), cs)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := Render(NewStamp("y", time.Now().Add(time.Hour)), cs)
	if err != nil {
		t.Fatal(err)
	}
	if string(out1) == string(out2) {
		t.Error("expected different stamps to render differently")
	}

	again, err := HashContacts(cs)
	if err != nil {
		t.Fatal(err)
	}
	if hash != again {
		t.Error("hash changed after rendering full fixtures")
	}
}

func TestCurrentStamp_RoundTrip(t *testing.T) {
	stamp := NewStamp("deadbeef", time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))

	out, err := Render(stamp, sampleContacts())
	if err != nil {
		t.Fatal(err)
	}

	got, err := CurrentStamp(out)
	if err != nil {
		t.Fatalf("CurrentStamp failed: %v", err)
	}
	if got != stamp {
		t.Errorf("got %+v, want %+v", got, stamp)
	}
}

func TestCurrentStamp_MissingStamp(t *testing.T) {
	out, err := RenderContacts(sampleContacts())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := CurrentStamp(out); err == nil {
		t.Fatal("expected error for fixture without import stamp")
	}
}

func TestCurrentStamp_MultipleStamps(t *testing.T) {
	doc := `
- fields:
    hash: a
    time: "2026-01-01T00:00:00.000+00:00"
  model: moneymeets_tenants.fondsnetimport
- fields:
    hash: b
    time: "2026-01-02T00:00:00.000+00:00"
  model: moneymeets_tenants.fondsnetimport
`
	if _, err := CurrentStamp([]byte(doc)); err == nil {
		t.Fatal("expected error for multiple import stamps")
	}
}

func TestCurrentStamp_InvalidYAML(t *testing.T) {
	if _, err := CurrentStamp([]byte("{not yaml")); err == nil {
		t.Fatal("expected parse error")
	}
}

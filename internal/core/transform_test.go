package core

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// acceptAll lets any non-nil record through so item skipping can be observed.
type acceptAll struct{}

func (acceptAll) Validate(*OrderRecord) ValidationResult { return ValidationResult{Valid: true} }

// requireEmail fails only records whose customer has no email.
type requireEmail struct{}

func (requireEmail) Validate(r *OrderRecord) ValidationResult {
	if r.Customer == nil || isBlank(r.Customer.Email) {
		return ValidationResult{Message: MsgCustomerEmailRequired}
	}
	return ValidationResult{Valid: true}
}

type countingParser struct {
	at    time.Time
	calls []string
}

func (p *countingParser) Parse(text string) (time.Time, Date) {
	p.calls = append(p.calls, text)
	return p.at, DateOf(p.at)
}

type countingFormatter struct {
	billing, shipping, customer int
}

func (f *countingFormatter) FormatBilling(*Address) string {
	f.billing++
	return "billing"
}

func (f *countingFormatter) FormatShipping(*Address) string {
	f.shipping++
	return "shipping"
}

func (f *countingFormatter) FormatCustomerAddress(*Customer, *Address) string {
	f.customer++
	return "customer"
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func item(sku, title string, qty int, price string) *LineItem {
	return &LineItem{SKU: sku, Title: title, Quantity: FlexInt(qty), Price: decimal.RequireFromString(price)}
}

func TestRecordTransformer_ValidationFailure(t *testing.T) {
	parser := &countingParser{}
	formatter := &countingFormatter{}
	tr := NewRecordTransformer(NewRecordValidator(), formatter, parser, WithLogger(quietLogger()))

	rec := validOrder()
	rec.Customer.Email = ""

	got := tr.Transform(rec)
	if got.Success {
		t.Fatal("expected failure outcome")
	}
	if got.Error != MsgCustomerEmailRequired {
		t.Errorf("Error = %q, want %q", got.Error, MsgCustomerEmailRequired)
	}
	if got.OriginalID != "1001" {
		t.Errorf("OriginalID = %q, want %q", got.OriginalID, "1001")
	}
	if len(got.Records) != 0 {
		t.Errorf("Records = %d, want 0", len(got.Records))
	}
	if len(parser.calls) != 0 || formatter.customer != 0 || formatter.shipping != 0 {
		t.Error("collaborators must not be called for an invalid record")
	}
}

func TestRecordTransformer_SkipsMalformedItems(t *testing.T) {
	parser := &countingParser{at: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	formatter := &countingFormatter{}
	tr := NewRecordTransformer(acceptAll{}, formatter, parser, WithLogger(quietLogger()))

	rec := validOrder()
	rec.CompletedAt = "2024-01-02T03:04:05Z"
	rec.Items = []*LineItem{
		item("A", "First", 1, "1.00"),
		nil,
		item("", "No SKU", 1, "1.00"),
		item("C", "  ", 1, "1.00"),
		item("D", "Fourth", 2, "4.50"),
	}

	got := tr.Transform(rec)
	if !got.Success {
		t.Fatalf("expected success, got %q", got.Error)
	}
	if len(got.Records) != 2 {
		t.Fatalf("Records = %d, want 2", len(got.Records))
	}
	if got.Records[0].ProductSKU != "A" || got.Records[1].ProductSKU != "D" {
		t.Errorf("rows out of order: %q, %q", got.Records[0].ProductSKU, got.Records[1].ProductSKU)
	}

	// One parse and one call per formatter for each emitted row.
	if len(parser.calls) != 2 {
		t.Errorf("parser calls = %d, want 2", len(parser.calls))
	}
	if formatter.customer != 2 || formatter.shipping != 2 {
		t.Errorf("formatter calls customer=%d shipping=%d, want 2 each", formatter.customer, formatter.shipping)
	}
	if formatter.billing != 0 {
		t.Errorf("FormatBilling called %d times directly, want 0", formatter.billing)
	}
}

func TestRecordTransformer_NoUsableItems(t *testing.T) {
	tr := NewRecordTransformer(acceptAll{}, &countingFormatter{}, &countingParser{}, WithLogger(quietLogger()))

	rec := validOrder()
	rec.Items = []*LineItem{nil, item("", "", 1, "1")}

	got := tr.Transform(rec)
	if !got.Success {
		t.Fatalf("expected success, got %q", got.Error)
	}
	if got.Records == nil || len(got.Records) != 0 {
		t.Errorf("Records = %#v, want empty non-nil slice", got.Records)
	}
}

func TestRecordTransformer_RowMapping(t *testing.T) {
	tr := NewDefaultTransformer(WithLogger(quietLogger()))

	rec := &OrderRecord{
		ID:          "1001",
		CompletedAt: "2023-11-28T15:17:17.410Z",
		StartedAt:   "2023-11-27T10:00:00Z",
		Customer: &Customer{
			ID: 42, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
		},
		BillingAddress:  &Address{Name: "Ada Lovelace", City: "London", Country: "GB"},
		ShippingAddress: &Address{Street: "1 Dock Rd", City: "London"},
		Items:           []*LineItem{item("MUG-1", "Mug", 3, "12.50")},
	}

	got := tr.Transform(rec)
	if !got.Success || len(got.Records) != 1 {
		t.Fatalf("Transform() = %+v, want one row", got)
	}

	row := got.Records[0]
	want := SalesRecord{
		ID:                "1001",
		CustomerID:        "42",
		CustomerEmail:     "ada@example.com",
		CustomerForenames: "Ada",
		CustomerSurname:   "Lovelace",
		CustomerAddress:   "Ada Lovelace, London, GB",
		ProductName:       "Mug",
		ProductSKU:        "MUG-1",
		ProductQuantity:   3,
		ProductPrice:      rec.Items[0].Price,
		ShippingAddress:   "Recipient Name Not Provided, 1 Dock Rd, London",
		PurchasedOn:       time.Date(2023, 11, 28, 15, 17, 17, 410_000_000, time.UTC),
		PurchasedOnDate:   Date{Year: 2023, Month: time.November, Day: 28},
	}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("row = %+v\nwant  %+v", row, want)
	}
	if row.PurchasedOnDate != DateOf(row.PurchasedOn.UTC()) {
		t.Errorf("PurchasedOnDate %s does not match PurchasedOn %s", row.PurchasedOnDate, row.PurchasedOn)
	}
}

func TestRecordTransformer_MissingCustomerDefaults(t *testing.T) {
	tr := NewRecordTransformer(acceptAll{}, NewPostalFormatter(), &countingParser{}, WithLogger(quietLogger()))

	rec := validOrder()
	rec.Customer = nil

	got := tr.Transform(rec)
	if !got.Success || len(got.Records) != 1 {
		t.Fatalf("Transform() = %+v, want one row", got)
	}

	row := got.Records[0]
	if row.CustomerID != UnknownCustomerID {
		t.Errorf("CustomerID = %q, want %q", row.CustomerID, UnknownCustomerID)
	}
	if row.CustomerEmail != "" || row.CustomerForenames != "" || row.CustomerSurname != "" {
		t.Errorf("customer fields = %q/%q/%q, want empty", row.CustomerEmail, row.CustomerForenames, row.CustomerSurname)
	}
	if row.CustomerAddress != "" {
		t.Errorf("CustomerAddress = %q, want empty", row.CustomerAddress)
	}
}

func TestRecordTransformer_DateSource(t *testing.T) {
	now := time.Date(2025, 2, 3, 4, 5, 6, 7, time.UTC)

	tests := []struct {
		name      string
		completed string
		started   string
		want      string
	}{
		{name: "completed wins", completed: "2024-01-01", started: "2023-01-01", want: "2024-01-01"},
		{name: "started when completed blank", completed: "  ", started: "2023-01-01", want: "2023-01-01"},
		{name: "now when both blank", want: now.Format(time.RFC3339Nano)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &countingParser{}
			tr := NewRecordTransformer(acceptAll{}, &countingFormatter{}, parser,
				WithTransformClock(func() time.Time { return now }),
				WithLogger(quietLogger()),
			)

			rec := validOrder()
			rec.CompletedAt = tt.completed
			rec.StartedAt = tt.started
			rec.Items = append(rec.Items, validItem())

			tr.Transform(rec)

			if len(parser.calls) != 2 {
				t.Fatalf("parser calls = %d, want 2", len(parser.calls))
			}
			for i, got := range parser.calls {
				if got != tt.want {
					t.Errorf("call %d parsed %q, want %q", i, got, tt.want)
				}
			}
		})
	}
}

func TestRecordTransformer_GeneratedIDs(t *testing.T) {
	tr := NewRecordTransformer(acceptAll{}, NewPostalFormatter(), NewFlexibleDateParser(), WithLogger(quietLogger()))
	hex32 := regexp.MustCompile(`^[0-9a-f]{32}$`)

	seen := make(map[string]bool)
	for i := 0; i < 2; i++ {
		rec := validOrder()
		rec.ID = ""
		rec.Items = append(rec.Items, validItem())

		got := tr.Transform(rec)
		if !got.Success || len(got.Records) != 2 {
			t.Fatalf("Transform() = %+v, want two rows", got)
		}

		for _, row := range got.Records {
			if !hex32.MatchString(row.ID) {
				t.Errorf("generated id %q is not 32 hex characters", row.ID)
			}
			if seen[row.ID] {
				t.Errorf("generated id %q reused", row.ID)
			}
			seen[row.ID] = true
		}
	}
}

func TestRecordTransformer_Idempotent(t *testing.T) {
	tr := NewDefaultTransformer(WithLogger(quietLogger()))

	rec := validOrder()
	rec.CompletedAt = "2023-11-28T15:17:17Z"
	rec.BillingAddress = &Address{City: "Paris", Country: "FR"}
	rec.Items = append(rec.Items, item("B", "Bowl", 2, "3.10"))

	first := tr.Transform(rec)
	second := tr.Transform(rec)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("outputs differ:\n%+v\n%+v", first, second)
	}
}

func TestRecordTransformer_NilRecord(t *testing.T) {
	tr := NewRecordTransformer(acceptAll{}, NewPostalFormatter(), NewFlexibleDateParser(), WithLogger(quietLogger()))

	if got := tr.Transform(nil); got.Success {
		t.Error("Transform(nil) succeeded, want failure")
	}
}

func TestRecordTransformer_NullCustomerIDBecomesZero(t *testing.T) {
	body := `{"id":"1001","customer":{"id":null,"email":"ada@example.com"},` +
		`"items":[{"sku":"MUG","title":"Mug","quantity":1,"price":5}]}`

	var rec OrderRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	got := NewDefaultTransformer(WithLogger(quietLogger())).Transform(&rec)
	if !got.Success || len(got.Records) != 1 {
		t.Fatalf("outcome = %+v, want one row", got)
	}
	if got.Records[0].CustomerID != "0" {
		t.Errorf("CustomerID = %q, want %q", got.Records[0].CustomerID, "0")
	}
}

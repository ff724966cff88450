package core

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is one decoded e-commerce order from the input array.
// Field names are matched case-insensitively by encoding/json.
type OrderRecord struct {
	ID              string      `json:"id"`
	BillingAddress  *Address    `json:"billing_address"`
	ShippingAddress *Address    `json:"shipping_address"`
	Customer        *Customer   `json:"customer"`
	CompletedAt     string      `json:"completed_at"`
	StartedAt       string      `json:"started_at"`
	Items           []*LineItem `json:"items"`
	Source          string      `json:"source"`
	Status          string      `json:"status"`

	// Accepted but not read by the pipeline. Kept raw so any shape decodes.
	Payment           json.RawMessage `json:"payment,omitempty"`
	ProcessorResponse json.RawMessage `json:"processor_response,omitempty"`
	Referral          json.RawMessage `json:"referral,omitempty"`
	Discounts         json.RawMessage `json:"discounts,omitempty"`
	Notes             json.RawMessage `json:"notes,omitempty"`
}

// Address is a free-text postal address. Every field is optional.
type Address struct {
	Name      string `json:"name"`
	Street    string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Latitude  string `json:"lat"`
	Longitude string `json:"lon"`
}

// Customer identifies the buyer of an order.
type Customer struct {
	ID        FlexInt64 `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first"`
	LastName  string    `json:"last"`
	Company   string    `json:"company"`
	Country   string    `json:"country"`
	CreatedAt string    `json:"created_at"`
}

// LineItem is one product entry within an order.
type LineItem struct {
	SKU      string          `json:"sku"`
	Title    string          `json:"title"`
	Quantity FlexInt         `json:"quantity"`
	Price    decimal.Decimal `json:"price"`

	// Metadata carried by the storefront export; ignored here.
	Vendor           json.RawMessage `json:"vendor,omitempty"`
	Fulfillment      json.RawMessage `json:"fulfillment,omitempty"`
	Grams            json.RawMessage `json:"grams,omitempty"`
	GiftCard         json.RawMessage `json:"gift_card,omitempty"`
	RequiresShipping json.RawMessage `json:"requires_shipping,omitempty"`
	Taxable          json.RawMessage `json:"taxable,omitempty"`
	Taxes            json.RawMessage `json:"taxes,omitempty"`
	Discounts        json.RawMessage `json:"discounts,omitempty"`
}

// SalesRecord is one flattened reporting row, produced per valid line item.
// PurchasedOnDate is always the UTC calendar date of PurchasedOn.
type SalesRecord struct {
	ID                string          `json:"id"`
	CustomerID        string          `json:"customerId"`
	CustomerEmail     string          `json:"customerEmail"`
	CustomerForenames string          `json:"customerForenames"`
	CustomerSurname   string          `json:"customerSurname"`
	CustomerAddress   string          `json:"customerAddress"`
	ProductName       string          `json:"productName"`
	ProductSKU        string          `json:"productSku"`
	ProductQuantity   int             `json:"productQuantity"`
	ProductPrice      decimal.Decimal `json:"productPrice"`
	ShippingAddress   string          `json:"shippingAddress"`
	PurchasedOn       time.Time       `json:"purchasedOn"`
	PurchasedOnDate   Date            `json:"purchasedOnDate"`
}

// MarshalJSON writes ProductPrice as a JSON number, which is what reporting
// ingests. decimal's own encoding quotes it.
func (r SalesRecord) MarshalJSON() ([]byte, error) {
	type plain SalesRecord
	return json.Marshal(struct {
		plain
		ProductPrice json.Number `json:"productPrice"`
	}{
		plain:        plain(r),
		ProductPrice: json.Number(r.ProductPrice.String()),
	})
}

// Outcome is the result of transforming a single order.
// A successful outcome may carry zero records.
type Outcome struct {
	Success    bool
	Records    []SalesRecord
	Error      string
	OriginalID string // empty when the order had no id
}

// SuccessOutcome wraps the rows produced for one order.
func SuccessOutcome(records []SalesRecord) Outcome {
	if records == nil {
		records = []SalesRecord{}
	}
	return Outcome{Success: true, Records: records}
}

// FailureOutcome records why an order produced no rows.
func FailureOutcome(message, originalID string) Outcome {
	return Outcome{Success: false, Records: []SalesRecord{}, Error: message, OriginalID: originalID}
}

// TransformationError is one failed order in a batch response.
type TransformationError struct {
	RecordIdentifier string `json:"recordIdentifier"`
	Error            string `json:"error"`
}

// BatchSummary holds the running totals of a batch.
type BatchSummary struct {
	TotalInputRecords int `json:"totalInputRecords"`
	TotalFailed       int `json:"totalFailed"`
	TotalSalesRecords int `json:"totalSalesRecords"`
}

// BatchResult accumulates the outcome of one input stream.
// It is mutated once per record and never after the stream ends.
type BatchResult struct {
	Summary BatchSummary
	Errors  []TransformationError
	Data    []SalesRecord
}

// NewBatchResult returns an empty batch whose lists encode as [] rather than null.
func NewBatchResult() *BatchResult {
	return &BatchResult{
		Errors: []TransformationError{},
		Data:   []SalesRecord{},
	}
}

// MarshalJSON renders the batch in the response shape expected by reporting:
// success flag, summary, errors, then data.
func (b *BatchResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success bool                  `json:"success"`
		Summary BatchSummary          `json:"summary"`
		Errors  []TransformationError `json:"errors"`
		Data    []SalesRecord         `json:"data"`
	}{
		Success: true,
		Summary: b.Summary,
		Errors:  b.Errors,
		Data:    b.Data,
	})
}

package core

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UnknownCustomerID is reported when an order carries no customer.
const UnknownCustomerID = "Unknown"

// Transformer expands one order into its reporting rows.
type Transformer interface {
	Transform(record *OrderRecord) Outcome
}

// IDGenerator produces identifiers for orders that arrive without one.
type IDGenerator func() string

// NewOrderID returns a random UUID rendered as 32 hex characters without dashes.
func NewOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RecordTransformer validates an order and emits one SalesRecord per usable item.
//
// The date parser and address formatter are called once per emitted row even
// though their inputs are order-level. Callers observing those collaborators
// (logging, call counts) rely on that pattern.
type RecordTransformer struct {
	validator Validator
	formatter AddressFormatter
	parser    DateParser
	newID     IDGenerator
	now       func() time.Time
	logger    *slog.Logger
}

// TransformerOption customises a RecordTransformer.
type TransformerOption func(*RecordTransformer)

// WithIDGenerator replaces the generator used for orders without an id.
func WithIDGenerator(gen IDGenerator) TransformerOption {
	return func(t *RecordTransformer) { t.newID = gen }
}

// WithTransformClock replaces the clock used when an order has no timestamps.
func WithTransformClock(now func() time.Time) TransformerOption {
	return func(t *RecordTransformer) { t.now = now }
}

// WithLogger sets the logger used for validation and skip warnings.
func WithLogger(logger *slog.Logger) TransformerOption {
	return func(t *RecordTransformer) { t.logger = logger }
}

// NewRecordTransformer wires a transformer from its collaborators.
func NewRecordTransformer(v Validator, f AddressFormatter, p DateParser, opts ...TransformerOption) *RecordTransformer {
	t := &RecordTransformer{
		validator: v,
		formatter: f,
		parser:    p,
		newID:     NewOrderID,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewDefaultTransformer wires the default validator, formatter and parser.
func NewDefaultTransformer(opts ...TransformerOption) *RecordTransformer {
	return NewRecordTransformer(NewRecordValidator(), NewPostalFormatter(), NewFlexibleDateParser(), opts...)
}

// Transform validates record and builds its rows. Items without a SKU or title
// are skipped without failing the order; an order left with no usable items
// succeeds with zero rows.
func (t *RecordTransformer) Transform(record *OrderRecord) Outcome {
	result := t.validator.Validate(record)
	if !result.Valid {
		var id string
		if record != nil {
			id = record.ID
		}
		t.logger.Warn("validation failed", "record_id", id, "error", result.Message)
		return FailureOutcome(result.Message, id)
	}
	if record == nil {
		return FailureOutcome(MsgOrderIDRequired, "")
	}

	dateSource := t.dateSource(record)
	records := make([]SalesRecord, 0, len(record.Items))

	for i, item := range record.Items {
		if item == nil || isBlank(item.SKU) || isBlank(item.Title) {
			t.logger.Warn("skipping invalid item", "order_id", record.ID, "item_index", i)
			continue
		}

		purchasedOn, purchasedOnDate := t.parser.Parse(dateSource)
		customerAddress := t.formatter.FormatCustomerAddress(record.Customer, record.BillingAddress)
		shippingAddress := t.formatter.FormatShipping(record.ShippingAddress)

		row := SalesRecord{
			ID:              t.orderID(record),
			CustomerID:      UnknownCustomerID,
			CustomerAddress: customerAddress,
			ProductName:     item.Title,
			ProductSKU:      item.SKU,
			ProductQuantity: item.Quantity.Int(),
			ProductPrice:    item.Price,
			ShippingAddress: shippingAddress,
			PurchasedOn:     purchasedOn,
			PurchasedOnDate: purchasedOnDate,
		}
		if c := record.Customer; c != nil {
			row.CustomerID = c.ID.String()
			row.CustomerEmail = c.Email
			row.CustomerForenames = c.FirstName
			row.CustomerSurname = c.LastName
		}

		records = append(records, row)
	}

	return SuccessOutcome(records)
}

// dateSource picks completed_at, then started_at, then the current instant
// rendered in round-trip form.
func (t *RecordTransformer) dateSource(record *OrderRecord) string {
	if !isBlank(record.CompletedAt) {
		return record.CompletedAt
	}
	if !isBlank(record.StartedAt) {
		return record.StartedAt
	}
	return t.now().UTC().Format(time.RFC3339Nano)
}

func (t *RecordTransformer) orderID(record *OrderRecord) string {
	if isBlank(record.ID) {
		return t.newID()
	}
	return record.ID
}

package core

// validation.go provides order-level validation applied before transformation.
//
// Rules are evaluated in a fixed order and validation stops at the first
// violation. The rule order and messages are part of the response contract:
// clients match on the message text, so both are kept in the tables below
// rather than spread across conditionals.

import "strings"

// Validation messages returned verbatim in batch error entries.
const (
	MsgOrderIDRequired       = "Order ID is required"
	MsgCustomerRequired      = "Customer information is required"
	MsgCustomerEmailRequired = "Customer email is required"
	MsgItemsRequired         = "At least one order item is required"
	MsgItemNull              = "Order item cannot be null"
	MsgItemSKURequired       = "Product SKU is required for all items"
	MsgItemTitleRequired     = "Product title is required for all items"
	MsgItemQuantityInvalid   = "Product quantity must be greater than 0"
	MsgItemPriceNegative     = "Product price cannot be negative"
)

// ValidationResult is the outcome of validating one order.
type ValidationResult struct {
	Valid   bool   // True if every rule passed
	Message string // Message of the first failing rule (empty if Valid)
}

// Validator checks one order before it is transformed.
type Validator interface {
	Validate(record *OrderRecord) ValidationResult
}

// recordRule is one order-level check. ok reports whether the record passes.
type recordRule struct {
	ok      func(r *OrderRecord) bool
	message string
}

// itemRule is one per-item check, applied to every item in input order.
type itemRule struct {
	ok      func(item *LineItem) bool
	message string
}

// recordRules are evaluated first, in order.
var recordRules = []recordRule{
	{
		ok:      func(r *OrderRecord) bool { return !isBlank(r.ID) },
		message: MsgOrderIDRequired,
	},
	{
		ok:      func(r *OrderRecord) bool { return r.Customer != nil },
		message: MsgCustomerRequired,
	},
	{
		ok:      func(r *OrderRecord) bool { return !isBlank(r.Customer.Email) },
		message: MsgCustomerEmailRequired,
	},
	{
		ok:      func(r *OrderRecord) bool { return len(r.Items) > 0 },
		message: MsgItemsRequired,
	},
}

// itemRules run per item after recordRules pass. The nil check must stay first.
var itemRules = []itemRule{
	{
		ok:      func(it *LineItem) bool { return it != nil },
		message: MsgItemNull,
	},
	{
		ok:      func(it *LineItem) bool { return !isBlank(it.SKU) },
		message: MsgItemSKURequired,
	},
	{
		ok:      func(it *LineItem) bool { return !isBlank(it.Title) },
		message: MsgItemTitleRequired,
	},
	{
		ok:      func(it *LineItem) bool { return it.Quantity > 0 },
		message: MsgItemQuantityInvalid,
	},
	{
		ok:      func(it *LineItem) bool { return !it.Price.IsNegative() },
		message: MsgItemPriceNegative,
	},
}

// RecordValidator applies recordRules then itemRules, stopping at the first failure.
// It has no state and is safe for concurrent use.
type RecordValidator struct{}

// NewRecordValidator creates the default order validator.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{}
}

// Validate returns the first rule violation for record, or a valid result.
func (v *RecordValidator) Validate(record *OrderRecord) ValidationResult {
	if record == nil {
		return ValidationResult{Message: MsgOrderIDRequired}
	}

	for _, rule := range recordRules {
		if !rule.ok(record) {
			return ValidationResult{Message: rule.message}
		}
	}

	for _, item := range record.Items {
		for _, rule := range itemRules {
			if !rule.ok(item) {
				return ValidationResult{Message: rule.message}
			}
		}
	}

	return ValidationResult{Valid: true}
}

// isBlank reports whether s is empty or only whitespace.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

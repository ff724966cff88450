package core

import "strings"

// RecipientPlaceholder stands in for a missing shipping recipient name.
const RecipientPlaceholder = "Recipient Name Not Provided"

// addressSeparator joins address members into a single display line.
const addressSeparator = ", "

// AddressFormatter renders postal addresses as single display strings.
// Implementations never return an error; missing input formats to "".
type AddressFormatter interface {
	FormatBilling(addr *Address) string
	FormatShipping(addr *Address) string
	FormatCustomerAddress(customer *Customer, billing *Address) string
}

// PostalFormatter is the default AddressFormatter.
type PostalFormatter struct{}

// NewPostalFormatter creates the default address formatter.
func NewPostalFormatter() *PostalFormatter {
	return &PostalFormatter{}
}

// FormatBilling joins name, street, city, state and country, skipping blanks.
func (f *PostalFormatter) FormatBilling(addr *Address) string {
	if addr == nil {
		return ""
	}
	return joinNonBlank(addr.Name, addr.Street, addr.City, addr.State, addr.Country)
}

// FormatShipping works like FormatBilling but keeps the name slot filled with
// RecipientPlaceholder. An address consisting only of the placeholder is
// reported as "".
func (f *PostalFormatter) FormatShipping(addr *Address) string {
	if addr == nil {
		return ""
	}

	name := addr.Name
	if isBlank(name) {
		name = RecipientPlaceholder
	}

	formatted := joinNonBlank(name, addr.Street, addr.City, addr.State, addr.Country)
	if formatted == RecipientPlaceholder {
		return ""
	}
	return formatted
}

// FormatCustomerAddress prefers the billing address. Without one it falls back
// to the customer's name, company and country.
func (f *PostalFormatter) FormatCustomerAddress(customer *Customer, billing *Address) string {
	if billing != nil {
		return f.FormatBilling(billing)
	}
	if customer == nil {
		return ""
	}

	var fullName string
	if !isBlank(customer.FirstName) || !isBlank(customer.LastName) {
		fullName = strings.TrimSpace(customer.FirstName + " " + customer.LastName)
	}
	return joinNonBlank(fullName, customer.Company, customer.Country)
}

// joinNonBlank trims each part and joins the non-blank ones with addressSeparator.
func joinNonBlank(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, addressSeparator)
}

package domain

import "fmt"

// LineItem is a single receipt line as submitted by the point-of-sale client.
// It is immutable once decoded; validation happens at decode time.
type LineItem struct {
	// Name is the product name as printed on the receipt
	Name string `json:"name"`

	// UnitPrice is the price of a single unit
	UnitPrice float64 `json:"price"`

	// Quantity is the number of units sold
	Quantity int `json:"count"`

	// VATPercent is the value-added tax (KDV) rate applied, in percent
	VATPercent float64 `json:"kdv"`
}

// Validate checks the line item invariants.
func (it LineItem) Validate() error {
	if it.Quantity < 0 {
		return fmt.Errorf("count: must not be negative, got %d", it.Quantity)
	}
	if it.UnitPrice < 0 {
		return fmt.Errorf("price: must not be negative, got %g", it.UnitPrice)
	}
	if it.VATPercent < 0 || it.VATPercent > 100 {
		return fmt.Errorf("kdv: must be between 0 and 100, got %g", it.VATPercent)
	}
	return nil
}

// Package decode turns raw request bodies into line item batches.
//
// The wire schema is a JSON array of objects, each carrying the four fields
// name (string), price (number), count (integer) and kdv (number, the VAT
// percentage). Decoding is strict: a missing field or a field of the wrong
// type rejects the whole batch, there is no partial acceptance. An empty body
// and an empty array are both rejected; a receipt with no line items is not a
// receipt.
package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ekasa-labs/receiptd/internal/domain"
)

// requiredFields lists the schema fields in diagnostic order.
var requiredFields = []string{"name", "price", "count", "kdv"}

// Items decodes body into an ordered slice of line items.
// On failure it returns a *domain.DecodeError describing the first problem
// found; the caller echoes the reason back to the client.
func Items(body []byte) ([]domain.LineItem, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &domain.DecodeError{Reason: "empty body, expected a JSON array"}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.DecodeError{Reason: fmt.Sprintf("not a JSON array: %v", err)}
	}
	if len(raw) == 0 {
		return nil, &domain.DecodeError{Reason: "empty batch, expected at least one item"}
	}

	items := make([]domain.LineItem, 0, len(raw))
	for i, elem := range raw {
		item, err := decodeItem(i, elem)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeItem(idx int, elem json.RawMessage) (domain.LineItem, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil {
		return domain.LineItem{}, itemErr(idx, "expected an object")
	}
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return domain.LineItem{}, itemErr(idx, name+": missing")
		}
	}

	var item domain.LineItem
	if err := json.Unmarshal(fields["name"], &item.Name); err != nil {
		return domain.LineItem{}, itemErr(idx, "name: expected string")
	}
	if err := json.Unmarshal(fields["price"], &item.UnitPrice); err != nil {
		return domain.LineItem{}, itemErr(idx, "price: expected number")
	}

	// count must be an integral JSON number; 3.5 units is not a quantity
	var count float64
	if err := json.Unmarshal(fields["count"], &count); err != nil || count != math.Trunc(count) {
		return domain.LineItem{}, itemErr(idx, "count: expected integer")
	}
	item.Quantity = int(count)

	if err := json.Unmarshal(fields["kdv"], &item.VATPercent); err != nil {
		return domain.LineItem{}, itemErr(idx, "kdv: expected number")
	}

	if err := item.Validate(); err != nil {
		return domain.LineItem{}, itemErr(idx, err.Error())
	}
	return item, nil
}

func itemErr(idx int, reason string) error {
	return &domain.DecodeError{Reason: fmt.Sprintf("item %d: %s", idx, reason)}
}

package decode

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ekasa-labs/receiptd/internal/domain"
)

func TestItems_RoundTrip(t *testing.T) {
	want := []domain.LineItem{
		{Name: "Elma", UnitPrice: 5.0, Quantity: 3, VATPercent: 8.0},
		{Name: "Ekmek", UnitPrice: 12.5, Quantity: 1, VATPercent: 1.0},
		{Name: "Süt", UnitPrice: 27.9, Quantity: 2, VATPercent: 8.0},
	}

	body, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := Items(body)
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestItems_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{
			name:   "empty body",
			body:   "",
			reason: "empty body",
		},
		{
			name:   "whitespace body",
			body:   "  \r\n ",
			reason: "empty body",
		},
		{
			name:   "not json",
			body:   "veri",
			reason: "not a JSON array",
		},
		{
			name:   "object instead of array",
			body:   `{"name":"Elma"}`,
			reason: "not a JSON array",
		},
		{
			name:   "empty array",
			body:   `[]`,
			reason: "empty batch",
		},
		{
			name:   "element not an object",
			body:   `[42]`,
			reason: "item 0: expected an object",
		},
		{
			name:   "missing name",
			body:   `[{"price":5.0,"count":3,"kdv":8.0}]`,
			reason: "name: missing",
		},
		{
			name:   "missing kdv",
			body:   `[{"name":"Elma","price":5.0,"count":3}]`,
			reason: "kdv: missing",
		},
		{
			name:   "price wrong type",
			body:   `[{"name":"Elma","price":"five","count":3,"kdv":8.0}]`,
			reason: "price: expected number",
		},
		{
			name:   "name wrong type",
			body:   `[{"name":7,"price":5.0,"count":3,"kdv":8.0}]`,
			reason: "name: expected string",
		},
		{
			name:   "count fractional",
			body:   `[{"name":"Elma","price":5.0,"count":3.5,"kdv":8.0}]`,
			reason: "count: expected integer",
		},
		{
			name:   "count wrong type",
			body:   `[{"name":"Elma","price":5.0,"count":"üç","kdv":8.0}]`,
			reason: "count: expected integer",
		},
		{
			name:   "negative count",
			body:   `[{"name":"Elma","price":5.0,"count":-1,"kdv":8.0}]`,
			reason: "count: must not be negative",
		},
		{
			name:   "kdv above range",
			body:   `[{"name":"Elma","price":5.0,"count":3,"kdv":108.0}]`,
			reason: "kdv: must be between 0 and 100",
		},
		{
			name:   "second item bad",
			body:   `[{"name":"Elma","price":5.0,"count":3,"kdv":8.0},{"name":"Süt","price":true,"count":1,"kdv":8.0}]`,
			reason: "item 1: price: expected number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Items([]byte(tt.body))
			if err == nil {
				t.Fatalf("Items accepted %q, want rejection", tt.body)
			}
			if items != nil {
				t.Errorf("Items returned items alongside error: %v", items)
			}
			var de *domain.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("error = %T, want *domain.DecodeError", err)
			}
			if !strings.Contains(de.Reason, tt.reason) {
				t.Errorf("reason = %q, want it to contain %q", de.Reason, tt.reason)
			}
		})
	}
}

func TestItems_PreservesOrder(t *testing.T) {
	body := `[
		{"name":"c","price":1,"count":1,"kdv":0},
		{"name":"a","price":1,"count":1,"kdv":0},
		{"name":"b","price":1,"count":1,"kdv":0}
	]`

	items, err := Items([]byte(body))
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}

	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.Name
	}
	if want := []string{"c", "a", "b"}; got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestItems_IgnoresExtraFields(t *testing.T) {
	body := `[{"name":"Elma","price":5.0,"count":3,"kdv":8.0,"barcode":"869..."}]`

	items, err := Items([]byte(body))
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}
	if items[0].Name != "Elma" || items[0].Quantity != 3 {
		t.Errorf("item = %+v", items[0])
	}
}

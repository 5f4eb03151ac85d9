package domain

import "time"

// Batch is one decoded set of line items accepted from a single POST.
// The receipt number is assigned by the state store at acceptance time and is
// unique and strictly increasing across the process lifetime.
type Batch struct {
	// Items holds the decoded line items in submission order
	Items []LineItem

	// ReceiptNumber is the monotonic counter value assigned to this batch
	ReceiptNumber uint64

	// ReceivedAt is the time the batch was accepted
	ReceivedAt time.Time
}

// Size returns the number of line items in the batch.
func (b Batch) Size() int {
	return len(b.Items)
}

// Empty returns true if the batch has no line items.
func (b Batch) Empty() bool {
	return len(b.Items) == 0
}

// Total returns the VAT-inclusive total of the batch.
func (b Batch) Total() float64 {
	var sum float64
	for _, it := range b.Items {
		line := it.UnitPrice * float64(it.Quantity)
		sum += line + line*it.VATPercent/100
	}
	return sum
}

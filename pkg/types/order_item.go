package types

// OrderItem is the immutable snapshot of one purchased product.
type OrderItem struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitAmountCents int    `json:"unit_amount"`
}

// TotalCents returns the line total in minor currency units.
func (i OrderItem) TotalCents() int {
	return i.Quantity * i.UnitAmountCents
}

// OrderItems is the jsonb items column.
type OrderItems []OrderItem

// TotalCents sums every line total.
func (items OrderItems) TotalCents() int {
	total := 0
	for _, item := range items {
		total += item.TotalCents()
	}
	return total
}

package types

import "github.com/google/uuid"

// OutboundLine is one dispensed item inside an outbound snapshot. Name and
// code are copied so the record survives later item edits.
type OutboundLine struct {
	ItemID   uuid.UUID `json:"item_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
}

// OutboundLines is stored as a jsonb column.
type OutboundLines []OutboundLine

// TotalQuantity sums the quantity of every line.
func (l OutboundLines) TotalQuantity() int {
	total := 0
	for _, line := range l {
		total += line.Quantity
	}
	return total
}

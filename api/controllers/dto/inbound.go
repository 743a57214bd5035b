package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
)

// ReceiptRequest is the body for receiving and editing inbound stock.
// ExpiredAt uses the YYYY-MM-DD layout.
type ReceiptRequest struct {
	ItemID     uuid.UUID `json:"item_id" validate:"required"`
	SupplierID uuid.UUID `json:"supplier_id" validate:"required"`
	Quantity   int       `json:"quantity"`
	ExpiredAt  *string   `json:"expired_at,omitempty"`
}

type InboundRecord struct {
	ID         uuid.UUID `json:"id"`
	Item       *Item     `json:"item,omitempty"`
	ItemID     uuid.UUID `json:"item_id"`
	Supplier   *Supplier `json:"supplier,omitempty"`
	SupplierID uuid.UUID `json:"supplier_id"`
	Quantity   int       `json:"quantity"`
	ExpiredAt  *string   `json:"expired_at,omitempty"`
	CreatedBy  uuid.UUID `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const DateLayout = "2006-01-02"

func NewInboundRecord(rec *models.InboundRecord) *InboundRecord {
	if rec == nil {
		return nil
	}
	out := &InboundRecord{
		ID:         rec.ID,
		Item:       NewItem(rec.Item),
		ItemID:     rec.ItemID,
		Supplier:   NewSupplier(rec.Supplier),
		SupplierID: rec.SupplierID,
		Quantity:   rec.Quantity,
		CreatedBy:  rec.CreatedBy,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if rec.ExpiredAt != nil {
		formatted := rec.ExpiredAt.Format(DateLayout)
		out.ExpiredAt = &formatted
	}
	return out
}

func NewInboundRecords(rows []models.InboundRecord) []InboundRecord {
	out := make([]InboundRecord, 0, len(rows))
	for i := range rows {
		out = append(out, *NewInboundRecord(&rows[i]))
	}
	return out
}

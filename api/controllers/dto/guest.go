package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
)

// ScanRequest is the body of POST /guests/{guestID}/scan.
type ScanRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Barcode  string    `json:"barcode" validate:"required,max=64"`
	Quantity int       `json:"quantity"`
}

type GuestCartLine struct {
	ID       uuid.UUID `json:"id"`
	ItemID   uuid.UUID `json:"item_id"`
	ItemName string    `json:"item_name,omitempty"`
	ItemCode string    `json:"item_code,omitempty"`
	Quantity int       `json:"quantity"`
}

type GuestCart struct {
	ID         uuid.UUID       `json:"id"`
	GuestID    uuid.UUID       `json:"guest_id"`
	SessionID  string          `json:"session_id"`
	IsReleased bool            `json:"is_released"`
	ReleasedAt *time.Time      `json:"released_at,omitempty"`
	Items      []GuestCartLine `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
}

type OutboundRecord struct {
	ID           uuid.UUID           `json:"id"`
	Origin       string              `json:"origin"`
	OriginID     uuid.UUID           `json:"origin_id"`
	SourceCartID uuid.UUID           `json:"source_cart_id"`
	ActorID      uuid.UUID           `json:"actor_id"`
	Lines        types.OutboundLines `json:"lines"`
	TotalQty     int                 `json:"total_qty"`
	ReleasedAt   time.Time           `json:"released_at"`
}

func NewGuestCart(cart *models.GuestCart) *GuestCart {
	if cart == nil {
		return nil
	}
	lines := make([]GuestCartLine, 0, len(cart.Items))
	for _, line := range cart.Items {
		out := GuestCartLine{ID: line.ID, ItemID: line.ItemID, Quantity: line.Quantity}
		if line.Item != nil {
			out.ItemName = line.Item.Name
			out.ItemCode = line.Item.Code
		}
		lines = append(lines, out)
	}
	return &GuestCart{
		ID:         cart.ID,
		GuestID:    cart.GuestID,
		SessionID:  cart.SessionID,
		IsReleased: cart.IsReleased,
		ReleasedAt: cart.ReleasedAt,
		Items:      lines,
		CreatedAt:  cart.CreatedAt,
	}
}

func NewOutboundRecord(rec *models.OutboundRecord) *OutboundRecord {
	if rec == nil {
		return nil
	}
	return &OutboundRecord{
		ID:           rec.ID,
		Origin:       string(rec.Origin),
		OriginID:     rec.OriginID,
		SourceCartID: rec.SourceCartID,
		ActorID:      rec.ActorID,
		Lines:        rec.Lines,
		TotalQty:     rec.TotalQty,
		ReleasedAt:   rec.ReleasedAt,
	}
}

func NewOutboundRecords(rows []models.OutboundRecord) []OutboundRecord {
	out := make([]OutboundRecord, 0, len(rows))
	for i := range rows {
		out = append(out, *NewOutboundRecord(&rows[i]))
	}
	return out
}

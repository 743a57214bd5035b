package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
)

// AddItemsRequest is the body of POST /cart/items.
type AddItemsRequest struct {
	Items []CartLineRequest `json:"items" validate:"required,min=1,dive"`
}

type CartLineRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int       `json:"quantity"`
}

// UpdateQuantityRequest is the body of PATCH /cart/items/{cartItemID}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartLine struct {
	ID        uuid.UUID  `json:"id"`
	ItemID    uuid.UUID  `json:"item_id"`
	ItemName  string     `json:"item_name,omitempty"`
	ItemCode  string     `json:"item_code,omitempty"`
	Quantity  int        `json:"quantity"`
	Status    string     `json:"status"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

type Cart struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Status      string     `json:"status"`
	Items       []CartLine `json:"items"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	DecidedBy   *uuid.UUID `json:"decided_by,omitempty"`
	ReleasedAt  *time.Time `json:"released_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CartRemoval reports the cart left after a line removal. Cart is nil when
// the last line went and the cart was deleted.
type CartRemoval struct {
	Cart    *Cart `json:"cart"`
	Deleted bool  `json:"deleted"`
}

func NewCart(cart *models.Cart) *Cart {
	if cart == nil {
		return nil
	}
	lines := make([]CartLine, 0, len(cart.Items))
	for _, line := range cart.Items {
		out := CartLine{
			ID:        line.ID,
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			Status:    string(line.Status),
			DecidedAt: line.DecidedAt,
		}
		if line.Item != nil {
			out.ItemName = line.Item.Name
			out.ItemCode = line.Item.Code
		}
		lines = append(lines, out)
	}
	return &Cart{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Status:      string(cart.Status),
		Items:       lines,
		SubmittedAt: cart.SubmittedAt,
		DecidedAt:   cart.DecidedAt,
		DecidedBy:   cart.DecidedBy,
		ReleasedAt:  cart.ReleasedAt,
		CreatedAt:   cart.CreatedAt,
		UpdatedAt:   cart.UpdatedAt,
	}
}

func NewCarts(rows []models.Cart) []Cart {
	out := make([]Cart, 0, len(rows))
	for i := range rows {
		out = append(out, *NewCart(&rows[i]))
	}
	return out
}

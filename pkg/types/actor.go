package types

import (
	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
)

// Actor is the authenticated caller passed explicitly into core operations.
type Actor struct {
	ID   uuid.UUID  `json:"id"`
	Role enums.Role `json:"role"`
}

// IsStaff reports whether the actor may act on carts owned by others.
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

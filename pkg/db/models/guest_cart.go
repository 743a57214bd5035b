package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuestCart collects scanned lines for a guest. Stock is untouched until the
// cart is released; IsReleased only ever flips false -> true.
type GuestCart struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	GuestID    uuid.UUID       `gorm:"column:guest_id;type:uuid;not null;index:idx_guest_carts_open_guest,unique,where:is_released = false"`
	SessionID  string          `gorm:"column:session_id;not null"`
	IsReleased bool            `gorm:"column:is_released;not null;default:false"`
	ReleasedAt *time.Time      `gorm:"column:released_at"`
	ReleasedBy *uuid.UUID      `gorm:"column:released_by;type:uuid"`
	Items      []GuestCartItem `gorm:"foreignKey:GuestCartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (g *GuestCart) BeforeCreate(*gorm.DB) error {
	assignID(&g.ID)
	return nil
}

// GuestCartItem is the pivot between a guest cart and an item.
type GuestCartItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	GuestCartID uuid.UUID `gorm:"column:guest_cart_id;type:uuid;not null;uniqueIndex:idx_guest_cart_items_cart_item"`
	ItemID      uuid.UUID `gorm:"column:item_id;type:uuid;not null;uniqueIndex:idx_guest_cart_items_cart_item;index"`
	Quantity    int       `gorm:"column:quantity;not null;check:chk_guest_cart_items_quantity_positive,quantity >= 1"`
	Item        *Item     `gorm:"foreignKey:ItemID"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (gi *GuestCartItem) BeforeCreate(*gorm.DB) error {
	assignID(&gi.ID)
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
)

// Cart is an employee request. At most one cart per user is active.
type Cart struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index:idx_carts_active_user,unique,where:status = 'active'"`
	Status      enums.CartStatus `gorm:"column:status;type:cart_status;not null;default:'active';index"`
	SubmittedAt *time.Time       `gorm:"column:submitted_at"`
	DecidedAt   *time.Time       `gorm:"column:decided_at"`
	DecidedBy   *uuid.UUID       `gorm:"column:decided_by;type:uuid"`
	ReleasedAt  *time.Time       `gorm:"column:released_at"`
	Items       []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// CartItem is a reserved line. Its quantity is already deducted from stock.
type CartItem struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID            `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_item"`
	ItemID    uuid.UUID            `gorm:"column:item_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_item;index"`
	Quantity  int                  `gorm:"column:quantity;not null;check:chk_cart_items_quantity_positive,quantity >= 1"`
	Status    enums.CartItemStatus `gorm:"column:status;type:cart_item_status;not null;default:'pending'"`
	DecidedAt *time.Time           `gorm:"column:decided_at"`
	Item      *Item                `gorm:"foreignKey:ItemID"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (ci *CartItem) BeforeCreate(*gorm.DB) error {
	assignID(&ci.ID)
	return nil
}

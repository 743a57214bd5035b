package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InboundRecord is a supplier receipt. Its quantity is the exact delta it
// applied to the item's stock.
type InboundRecord struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ItemID     uuid.UUID  `gorm:"column:item_id;type:uuid;not null;index"`
	SupplierID uuid.UUID  `gorm:"column:supplier_id;type:uuid;not null;index"`
	Quantity   int        `gorm:"column:quantity;not null;check:chk_inbound_records_quantity_positive,quantity >= 1"`
	ExpiredAt  *time.Time `gorm:"column:expired_at;type:date"`
	CreatedBy  uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	Item       *Item      `gorm:"foreignKey:ItemID"`
	Supplier   *Supplier  `gorm:"foreignKey:SupplierID"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *InboundRecord) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

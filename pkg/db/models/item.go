package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item owns the authoritative stock counter. Stock changes only through the
// ledger while the row is locked.
type Item struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;not null"`
	Code       string    `gorm:"column:code;not null;uniqueIndex:idx_items_code"`
	Unit       string    `gorm:"column:unit;not null;default:'pcs'"`
	Stock      int       `gorm:"column:stock;not null;default:0;check:chk_items_stock_non_negative,stock >= 0"`
	Category   *Category `gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
)

// StockMovement records an immutable ledger mutation.
type StockMovement struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ItemID      uuid.UUID            `gorm:"column:item_id;type:uuid;not null;index"`
	Delta       int                  `gorm:"column:delta;not null"`
	StockAfter  int                  `gorm:"column:stock_after;not null"`
	Reason      enums.MovementReason `gorm:"column:reason;type:stock_movement_reason;not null"`
	ReferenceID uuid.UUID            `gorm:"column:reference_id;type:uuid;not null;index"`
	ActorID     uuid.UUID            `gorm:"column:actor_id;type:uuid;not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
)

// ErrOutboundImmutable is returned by the model hooks on update or delete.
var ErrOutboundImmutable = errors.New("outbound records are immutable")

// OutboundRecord is the immutable snapshot of dispensed stock. OriginID is
// the employee cart id or the guest id depending on Origin.
type OutboundRecord struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Origin       enums.OutboundOrigin `gorm:"column:origin;type:outbound_origin;not null;index:idx_outbound_records_origin"`
	OriginID     uuid.UUID            `gorm:"column:origin_id;type:uuid;not null;index:idx_outbound_records_origin"`
	SourceCartID uuid.UUID            `gorm:"column:source_cart_id;type:uuid;not null;uniqueIndex"`
	ActorID      uuid.UUID            `gorm:"column:actor_id;type:uuid;not null"`
	Lines        types.OutboundLines  `gorm:"column:lines;type:jsonb;serializer:json;not null"`
	TotalQty     int                  `gorm:"column:total_qty;not null"`
	ReleasedAt   time.Time            `gorm:"column:released_at;not null"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (o *OutboundRecord) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

func (o *OutboundRecord) BeforeUpdate(*gorm.DB) error {
	return ErrOutboundImmutable
}

func (o *OutboundRecord) BeforeDelete(*gorm.DB) error {
	return ErrOutboundImmutable
}

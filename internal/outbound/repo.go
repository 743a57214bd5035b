package outbound

import (
	"context"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository appends and reads outbound records. There is no update or
// delete; the model hooks and a database trigger reject both.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.OutboundRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.OutboundRecord, error)
	FindBySourceCart(ctx context.Context, sourceCartID uuid.UUID) (*models.OutboundRecord, error)
	List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.OutboundRecord, error)
}

// ListFilter narrows outbound listings.
type ListFilter struct {
	Origin   *enums.OutboundOrigin
	OriginID *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an outbound repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.OutboundRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.OutboundRecord, error) {
	var record models.OutboundRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindBySourceCart(ctx context.Context, sourceCartID uuid.UUID) (*models.OutboundRecord, error) {
	var record models.OutboundRecord
	if err := r.db.WithContext(ctx).First(&record, "source_cart_id = ?", sourceCartID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.OutboundRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.OutboundRecord{})
	if filter.Origin != nil {
		query = query.Where("outbound_records.origin = ?", *filter.Origin)
	}
	if filter.OriginID != nil {
		query = query.Where("outbound_records.origin_id = ?", *filter.OriginID)
	}
	var rows []models.OutboundRecord
	if err := query.Scopes(pagination.Scope("outbound_records", cursor, limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

package inbound

import (
	"context"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists inbound receipts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.InboundRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InboundRecord, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.InboundRecord, error)
	Update(ctx context.Context, record *models.InboundRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.InboundRecord, error)
}

// ListFilter narrows receipt listings.
type ListFilter struct {
	ItemID     *uuid.UUID
	SupplierID *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inbound repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.InboundRecord) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InboundRecord, error) {
	var record models.InboundRecord
	if err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Supplier").
		First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// LockByID serializes concurrent edits and deletes of one receipt.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.InboundRecord, error) {
	var record models.InboundRecord
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Update(ctx context.Context, record *models.InboundRecord) error {
	return r.db.WithContext(ctx).
		Model(&models.InboundRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"item_id":     record.ItemID,
			"supplier_id": record.SupplierID,
			"quantity":    record.Quantity,
			"expired_at":  record.ExpiredAt,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InboundRecord{}).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.InboundRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.InboundRecord{}).Preload("Item").Preload("Supplier")
	if filter.ItemID != nil {
		query = query.Where("inbound_records.item_id = ?", *filter.ItemID)
	}
	if filter.SupplierID != nil {
		query = query.Where("inbound_records.supplier_id = ?", *filter.SupplierID)
	}
	var rows []models.InboundRecord
	if err := query.Scopes(pagination.Scope("inbound_records", cursor, limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

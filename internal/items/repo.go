package items

import (
	"context"
	"strings"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads reference data: items, categories, suppliers and guests.
type Repository interface {
	FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	FindItemByCode(ctx context.Context, code string) (*models.Item, error)
	ListItems(ctx context.Context, filter ListItemsFilter) ([]models.Item, error)
	FindSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	FindGuest(ctx context.Context, id uuid.UUID) (*models.Guest, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// ListItemsFilter narrows item listings.
type ListItemsFilter struct {
	CategoryID *uuid.UUID
	Query      string
	MaxStock   *int
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reference data repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Preload("Category").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByCode(ctx context.Context, code string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Preload("Category").First(&item, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, filter ListItemsFilter) ([]models.Item, error) {
	query := r.db.WithContext(ctx).Model(&models.Item{}).Preload("Category")
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}
	if filter.MaxStock != nil {
		query = query.Where("stock <= ?", *filter.MaxStock)
	}
	var rows []models.Item
	if err := query.Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var rows []models.Supplier
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindGuest(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	var guest models.Guest
	if err := r.db.WithContext(ctx).First(&guest, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

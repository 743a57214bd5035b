package ledger

import (
	"context"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages item stock rows and the movement journal.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	SetStock(ctx context.Context, id uuid.UUID, stock int) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, itemID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.StockMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// LockItem reads the item under an exclusive row lock held until the
// surrounding transaction ends.
func (r *repository) LockItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) SetStock(ctx context.Context, id uuid.UUID, stock int) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Update("stock", stock).Error
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, itemID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Scopes(pagination.Scope("stock_movements", cursor, limit)).
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

package cart

import (
	"context"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// FindLine reads a cart line without locking it. Callers use it to find the
// owning cart, then lock the cart before trusting anything else on the line.
func (r *Repository) FindLine(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var line models.CartItem
	if err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repository) LockLine(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var line models.CartItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&line, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repository) LockLineByItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var line models.CartItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ? AND item_id = ?", cartID, itemID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// LockLines locks every line of a cart ordered by item id.
func (r *Repository) LockLines(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var lines []models.CartItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ?", cartID).
		Order("item_id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *Repository) CreateLine(ctx context.Context, line *models.CartItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error
}

// UpdateLine writes the quantity and decision columns of a line.
func (r *Repository) UpdateLine(ctx context.Context, line *models.CartItem) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", line.ID).
		Updates(map[string]any{
			"quantity":   line.Quantity,
			"status":     line.Status,
			"decided_at": line.DecidedAt,
		}).Error
}

func (r *Repository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{}).Error
}

func (r *Repository) CountLines(ctx context.Context, cartID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&count).Error
	return count, err
}

package cart

import (
	"context"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence operations for employee carts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// EnsureActive returns the caller's active cart, creating it when missing,
// and locks it. Concurrent first adds collapse onto one row through the
// partial unique index on (user_id) where status = 'active'.
func (r *Repository) EnsureActive(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	candidate := &models.Cart{UserID: userID, Status: enums.CartStatusActive}
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(candidate).Error; err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindActiveByUser loads the caller's active cart with its lines.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.withLines(ctx).
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByID loads a cart with its lines and their items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.withLines(ctx).First(&cart, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) LockByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cart, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Update writes the lifecycle columns of the cart.
func (r *Repository) Update(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cart.ID).
		Updates(map[string]any{
			"status":       cart.Status,
			"submitted_at": cart.SubmittedAt,
			"decided_at":   cart.DecidedAt,
			"decided_by":   cart.DecidedBy,
			"released_at":  cart.ReleasedAt,
		}).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Cart{}).Error
}

// List returns carts newest first using keyset pagination.
func (r *Repository) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Cart, error) {
	query := r.withLines(ctx).Model(&models.Cart{})
	if filter.UserID != nil {
		query = query.Where("carts.user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("carts.status = ?", *filter.Status)
	}
	var rows []models.Cart
	if err := query.Scopes(pagination.Scope("carts", cursor, limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC").Order("cart_items.id ASC")
		}).
		Preload("Items.Item")
}

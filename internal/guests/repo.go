package guests

import (
	"context"
	"time"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists guest carts and their scanned lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EnsureOpen(ctx context.Context, guestID uuid.UUID, sessionID string) (*models.GuestCart, error)
	FindOpenByGuest(ctx context.Context, guestID uuid.UUID) (*models.GuestCart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.GuestCart, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.GuestCart, error)
	LockLines(ctx context.Context, cartID uuid.UUID) ([]models.GuestCartItem, error)
	LockLineByItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.GuestCartItem, error)
	CreateLine(ctx context.Context, line *models.GuestCartItem) error
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	MarkReleased(ctx context.Context, cartID, actorID uuid.UUID, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a guest cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// EnsureOpen returns the guest's unreleased cart, creating it when missing,
// and locks it. The partial unique index on guest_id where is_released =
// false keeps one open cart per guest.
func (r *repository) EnsureOpen(ctx context.Context, guestID uuid.UUID, sessionID string) (*models.GuestCart, error) {
	candidate := &models.GuestCart{GuestID: guestID, SessionID: sessionID}
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(candidate).Error; err != nil {
		return nil, err
	}

	var cart models.GuestCart
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("guest_id = ? AND is_released = ?", guestID, false).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindOpenByGuest(ctx context.Context, guestID uuid.UUID) (*models.GuestCart, error) {
	var cart models.GuestCart
	if err := r.withLines(ctx).
		Where("guest_id = ? AND is_released = ?", guestID, false).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GuestCart, error) {
	var cart models.GuestCart
	if err := r.withLines(ctx).First(&cart, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.GuestCart, error) {
	var cart models.GuestCart
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cart, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockLines locks every line of a guest cart ordered by item id.
func (r *repository) LockLines(ctx context.Context, cartID uuid.UUID) ([]models.GuestCartItem, error) {
	var lines []models.GuestCartItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("guest_cart_id = ?", cartID).
		Order("item_id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) LockLineByItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.GuestCartItem, error) {
	var line models.GuestCartItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("guest_cart_id = ? AND item_id = ?", cartID, itemID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.GuestCartItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error
}

func (r *repository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.GuestCartItem{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

// MarkReleased flips is_released only while it is still false and reports
// how many rows changed.
func (r *repository) MarkReleased(ctx context.Context, cartID, actorID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.GuestCart{}).
		Where("id = ? AND is_released = ?", cartID, false).
		Updates(map[string]any{
			"is_released": true,
			"released_at": at,
			"released_by": actorID,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("guest_cart_items.created_at ASC").Order("guest_cart_items.id ASC")
		}).
		Preload("Items.Item")
}

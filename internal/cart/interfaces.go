package cart

import (
	"context"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart and
// request services. Lock* methods take a row lock held until the enclosing
// transaction ends.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	EnsureActive(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Update(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Cart, error)

	FindLine(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	LockLine(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	LockLineByItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	LockLines(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	CreateLine(ctx context.Context, line *models.CartItem) error
	UpdateLine(ctx context.Context, line *models.CartItem) error
	DeleteLine(ctx context.Context, id uuid.UUID) error
	CountLines(ctx context.Context, cartID uuid.UUID) (int64, error)
}

// ListFilter narrows cart listings. Zero values match everything.
type ListFilter struct {
	UserID *uuid.UUID
	Status *enums.CartStatus
}

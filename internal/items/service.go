package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes read-only reference lookups used by the stock operations.
type Service interface {
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetItemByCode(ctx context.Context, code string) (*models.Item, error)
	ListItems(ctx context.Context, filter ListItemsFilter) ([]models.Item, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	GetGuest(ctx context.Context, id uuid.UUID) (*models.Guest, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type service struct {
	repo Repository
}

// NewService builds the reference lookup service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindItem(ctx, id)
	return item, lookupError(err, "item")
}

// GetItemByCode matches the trimmed barcode exactly.
func (s *service) GetItemByCode(ctx context.Context, code string) (*models.Item, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	item, err := s.repo.FindItemByCode(ctx, code)
	return item, lookupError(err, "item")
}

func (s *service) ListItems(ctx context.Context, filter ListItemsFilter) ([]models.Item, error) {
	if filter.MaxStock != nil && *filter.MaxStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max stock must be non-negative")
	}
	rows, err := s.repo.ListItems(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}
	return rows, nil
}

func (s *service) GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	supplier, err := s.repo.FindSupplier(ctx, id)
	return supplier, lookupError(err, "supplier")
}

func (s *service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	rows, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list suppliers")
	}
	return rows, nil
}

func (s *service) GetGuest(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest id is required")
	}
	guest, err := s.repo.FindGuest(ctx, id)
	return guest, lookupError(err, "guest")
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return rows, nil
}

func lookupError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, resource+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+resource)
}

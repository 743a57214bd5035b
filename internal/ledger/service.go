package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/metrics"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service owns every stock mutation. Increase and Decrease run on the
// caller's transaction and hold the item row lock until it ends.
type Service interface {
	LockItems(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Item, error)
	Increase(ctx context.Context, tx *gorm.DB, input MutationInput) (*models.StockMovement, error)
	Decrease(ctx context.Context, tx *gorm.DB, input MutationInput) (*models.StockMovement, error)
	Report(ctx context.Context, movements []models.StockMovement)
	ListMovements(ctx context.Context, itemID uuid.UUID, params pagination.Params) (*MovementPage, error)
}

type service struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.StockMetrics
}

// MutationInput describes a single ledger change.
type MutationInput struct {
	ItemID      uuid.UUID            `json:"item_id"`
	Quantity    int                  `json:"quantity"`
	Reason      enums.MovementReason `json:"reason"`
	ReferenceID uuid.UUID            `json:"reference_id"`
	ActorID     uuid.UUID            `json:"actor_id"`
}

// MovementPage is one page of an item's movement journal.
type MovementPage struct {
	Movements  []models.StockMovement `json:"movements"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, logg *logger.Logger, stockMetrics *metrics.StockMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, metrics: stockMetrics}, nil
}

// LockItems locks the distinct ids in ascending order and returns the rows in
// that order. Multi-item operations call it first so concurrent callers
// always acquire locks in the same sequence.
func (s *service) LockItems(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Item, error) {
	repo := s.repo.WithTx(tx)
	ordered := SortedUnique(ids)
	items := make([]*models.Item, 0, len(ordered))
	for _, id := range ordered {
		item, err := repo.LockItem(ctx, id)
		if err != nil {
			return nil, itemLookupError(err, id)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *service) Increase(ctx context.Context, tx *gorm.DB, input MutationInput) (*models.StockMovement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)
	item, err := repo.LockItem(ctx, input.ItemID)
	if err != nil {
		return nil, itemLookupError(err, input.ItemID)
	}
	return s.apply(ctx, repo, item, input.Quantity, input)
}

func (s *service) Decrease(ctx context.Context, tx *gorm.DB, input MutationInput) (*models.StockMovement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)
	item, err := repo.LockItem(ctx, input.ItemID)
	if err != nil {
		return nil, itemLookupError(err, input.ItemID)
	}
	if input.Quantity > item.Stock {
		return nil, InsufficientStock(item, input.Quantity)
	}
	return s.apply(ctx, repo, item, -input.Quantity, input)
}

func (s *service) apply(ctx context.Context, repo Repository, item *models.Item, delta int, input MutationInput) (*models.StockMovement, error) {
	next := item.Stock + delta
	if err := repo.SetStock(ctx, item.ID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update stock")
	}
	movement := &models.StockMovement{
		ItemID:      item.ID,
		Delta:       delta,
		StockAfter:  next,
		Reason:      input.Reason,
		ReferenceID: input.ReferenceID,
		ActorID:     input.ActorID,
	}
	if err := repo.CreateMovement(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record stock movement")
	}
	item.Stock = next
	return movement, nil
}

// Report logs and counts movements once their transaction has committed.
func (s *service) Report(ctx context.Context, movements []models.StockMovement) {
	for _, movement := range movements {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"item_id":      movement.ItemID.String(),
			"delta":        movement.Delta,
			"stock_after":  movement.StockAfter,
			"reason":       movement.Reason.String(),
			"reference_id": movement.ReferenceID.String(),
		})
		s.logg.Info(logCtx, "stock movement committed")
		s.metrics.AddMovement(movement.Reason.String(), movement.Delta)
	}
}

func (s *service) ListMovements(ctx context.Context, itemID uuid.UUID, params pagination.Params) (*MovementPage, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListMovements(ctx, itemID, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stock movements")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(m models.StockMovement) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	return &MovementPage{Movements: rows, NextCursor: next}, nil
}

func (in MutationInput) validate() error {
	if in.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if in.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if !in.Reason.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement reason %q", in.Reason))
	}
	if in.ReferenceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "reference id is required")
	}
	return nil
}

// InsufficientStock builds the typed failure for a request larger than stock.
func InsufficientStock(item *models.Item, requested int) error {
	return pkgerrors.New(
		pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %s: requested %d, available %d", item.Code, requested, item.Stock),
	).WithDetails(map[string]any{
		"item_id":   item.ID,
		"requested": requested,
		"available": item.Stock,
	})
}

// OutOfStock builds the typed failure for an item with no stock left.
func OutOfStock(item *models.Item) error {
	return pkgerrors.New(
		pkgerrors.CodeOutOfStock,
		fmt.Sprintf("%s is out of stock", item.Code),
	).WithDetails(map[string]any{"item_id": item.ID})
}

// SortedUnique returns the distinct non-nil ids in ascending order.
func SortedUnique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func itemLookupError(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found").WithDetails(map[string]any{"item_id": id})
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock item")
}

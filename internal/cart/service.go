package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SeptianAdiraharja/Inventory/internal/ledger"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/metrics"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// DefaultMaxLines caps the lines accepted by one AddItems call.
const DefaultMaxLines = 50

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages an employee's active cart. Stock is reserved when a line is
// added and handed back when the line shrinks or is removed.
type Service interface {
	AddItems(ctx context.Context, userID uuid.UUID, lines []LineInput) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID, cartItemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) (*models.Cart, error)
	Submit(ctx context.Context, userID, cartID uuid.UUID) (*models.Cart, error)
	GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetCart(ctx context.Context, actor types.Actor, cartID uuid.UUID) (*models.Cart, error)
	ListCarts(ctx context.Context, filter ListFilter, params pagination.Params) (*Page, error)
}

// LineInput is one requested (item, quantity) pair.
type LineInput struct {
	ItemID   uuid.UUID
	Quantity int
}

// Page is one page of carts, newest first.
type Page struct {
	Carts      []models.Cart `json:"carts"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type service struct {
	repo     CartRepository
	tx       txRunner
	ledger   ledger.Service
	logg     *logger.Logger
	metrics  *metrics.StockMetrics
	now      func() time.Time
	maxLines int
}

// NewService builds a cart service backed by the provided stack. A
// non-positive maxLines falls back to DefaultMaxLines.
func NewService(
	repo CartRepository,
	tx txRunner,
	ledgerSvc ledger.Service,
	logg *logger.Logger,
	stockMetrics *metrics.StockMetrics,
	now func() time.Time,
	maxLines int,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &service{
		repo:     repo,
		tx:       tx,
		ledger:   ledgerSvc,
		logg:     logg,
		metrics:  stockMetrics,
		now:      now,
		maxLines: maxLines,
	}, nil
}

// AddItems reserves every line against stock in one transaction. Lines for
// the same item are merged and items are processed in ascending id order; a
// failing line aborts the whole call.
func (s *service) AddItems(ctx context.Context, userID uuid.UUID, lines []LineInput) (cart *models.Cart, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("cart_add", start, err) }()

	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user is required")
	}
	merged, err := mergeLines(lines, s.maxLines)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}

	var (
		cartID uuid.UUID
		moves  []models.StockMovement
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		active, err := repo.EnsureActive(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active cart")
		}
		cartID = active.ID

		items, err := s.ledger.LockItems(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, item := range items {
			qty := merged[item.ID]
			if item.Stock == 0 {
				return ledger.OutOfStock(item)
			}
			if qty > item.Stock {
				return ledger.InsufficientStock(item, qty)
			}
			move, err := s.ledger.Decrease(ctx, tx, ledger.MutationInput{
				ItemID:      item.ID,
				Quantity:    qty,
				Reason:      enums.MovementReasonCartReserve,
				ReferenceID: active.ID,
				ActorID:     userID,
			})
			if err != nil {
				return err
			}
			moves = append(moves, *move)

			if err := upsertLine(ctx, repo, active.ID, item.ID, qty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Report(ctx, moves)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"cart_id": cartID.String(),
		"lines":   len(merged),
	}), "cart items reserved")
	return s.load(ctx, cartID)
}

// UpdateQuantity resizes a line. The line's current reservation counts toward
// the available capacity, so shrinking always succeeds and growing succeeds
// up to stock plus the reserved quantity.
func (s *service) UpdateQuantity(ctx context.Context, userID, cartItemID uuid.UUID, quantity int) (cart *models.Cart, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("cart_update", start, err) }()

	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var moves []models.StockMovement
	var cartID uuid.UUID
	err = s.withOwnedLine(ctx, userID, cartItemID, func(tx *gorm.DB, repo CartRepository, active *models.Cart, line *models.CartItem) error {
		cartID = active.ID
		if quantity == line.Quantity {
			return nil
		}
		items, err := s.ledger.LockItems(ctx, tx, []uuid.UUID{line.ItemID})
		if err != nil {
			return err
		}
		item := items[0]
		capacity := item.Stock + line.Quantity
		if quantity > capacity {
			view := *item
			view.Stock = capacity
			return ledger.InsufficientStock(&view, quantity)
		}

		restore, err := s.ledger.Increase(ctx, tx, ledger.MutationInput{
			ItemID:      item.ID,
			Quantity:    line.Quantity,
			Reason:      enums.MovementReasonCartRestore,
			ReferenceID: active.ID,
			ActorID:     userID,
		})
		if err != nil {
			return err
		}
		reserve, err := s.ledger.Decrease(ctx, tx, ledger.MutationInput{
			ItemID:      item.ID,
			Quantity:    quantity,
			Reason:      enums.MovementReasonCartReserve,
			ReferenceID: active.ID,
			ActorID:     userID,
		})
		if err != nil {
			return err
		}
		moves = append(moves, *restore, *reserve)

		line.Quantity = quantity
		if err := repo.UpdateLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Report(ctx, moves)
	return s.load(ctx, cartID)
}

// RemoveItem hands the line's reservation back to stock and deletes the line.
// When the last line goes the cart is deleted too and a nil cart is returned.
func (s *service) RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) (cart *models.Cart, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("cart_remove", start, err) }()

	var (
		moves       []models.StockMovement
		cartID      uuid.UUID
		cartDeleted bool
	)
	err = s.withOwnedLine(ctx, userID, cartItemID, func(tx *gorm.DB, repo CartRepository, active *models.Cart, line *models.CartItem) error {
		cartID = active.ID
		move, err := s.ledger.Increase(ctx, tx, ledger.MutationInput{
			ItemID:      line.ItemID,
			Quantity:    line.Quantity,
			Reason:      enums.MovementReasonCartRestore,
			ReferenceID: active.ID,
			ActorID:     userID,
		})
		if err != nil {
			return err
		}
		moves = append(moves, *move)

		if err := repo.DeleteLine(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
		}
		remaining, err := repo.CountLines(ctx, active.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count cart lines")
		}
		if remaining == 0 {
			if err := repo.Delete(ctx, active.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete empty cart")
			}
			cartDeleted = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Report(ctx, moves)
	if cartDeleted {
		s.logg.Info(s.logg.WithField(ctx, "cart_id", cartID.String()), "empty cart deleted")
		return nil, nil
	}
	return s.load(ctx, cartID)
}

// Submit moves the caller's active cart to pending. Stock is untouched.
func (s *service) Submit(ctx context.Context, userID, cartID uuid.UUID) (cart *models.Cart, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("cart_submit", start, err) }()

	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user is required")
	}
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.LockByID(ctx, cartID)
		if err != nil {
			return CartLookupError(err)
		}
		if locked.UserID != userID {
			return notOwner()
		}
		if !locked.Status.CanTransitionTo(enums.CartStatusPending) {
			return InvalidTransition(locked, enums.CartStatusPending)
		}
		count, err := repo.CountLines(ctx, locked.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count cart lines")
		}
		if count == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart has no items")
		}

		now := s.now().UTC()
		locked.Status = enums.CartStatusPending
		locked.SubmittedAt = &now
		if err := repo.Update(ctx, locked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "submit cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "cart_id", cartID.String()), "cart submitted")
	return s.load(ctx, cartID)
}

func (s *service) GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user is required")
	}
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active cart")
	}
	return cart, nil
}

// GetCart returns a cart to its owner or to staff.
func (s *service) GetCart(ctx context.Context, actor types.Actor, cartID uuid.UUID) (*models.Cart, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.UserID != actor.ID && !actor.IsStaff() {
		return nil, notOwner()
	}
	return cart, nil
}

func (s *service) ListCarts(ctx context.Context, filter ListFilter, params pagination.Params) (*Page, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart status")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, filter, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list carts")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(c models.Cart) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	return &Page{Carts: rows, NextCursor: next}, nil
}

// withOwnedLine runs fn in a transaction holding the cart lock and the line
// lock, after checking the caller owns the cart and the cart is still active.
func (s *service) withOwnedLine(
	ctx context.Context,
	userID, cartItemID uuid.UUID,
	fn func(tx *gorm.DB, repo CartRepository, cart *models.Cart, line *models.CartItem) error,
) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user is required")
	}
	if cartItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindLine(ctx, cartItemID)
		if err != nil {
			return lineLookupError(err)
		}
		locked, err := repo.LockByID(ctx, found.CartID)
		if err != nil {
			return CartLookupError(err)
		}
		if locked.UserID != userID {
			return notOwner()
		}
		if locked.Status != enums.CartStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is no longer active").
				WithDetails(map[string]any{"status": locked.Status})
		}
		line, err := repo.LockLine(ctx, cartItemID)
		if err != nil {
			return lineLookupError(err)
		}
		if line.CartID != locked.ID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return fn(tx, repo, locked, line)
	})
}

func (s *service) load(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, CartLookupError(err)
	}
	return cart, nil
}

func upsertLine(ctx context.Context, repo CartRepository, cartID, itemID uuid.UUID, qty int) error {
	line, err := repo.LockLineByItem(ctx, cartID, itemID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := repo.CreateLine(ctx, &models.CartItem{
			CartID:   cartID,
			ItemID:   itemID,
			Quantity: qty,
			Status:   enums.CartItemStatusPending,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart line")
		}
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}
	line.Quantity += qty
	if err := repo.UpdateLine(ctx, line); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
	}
	return nil
}

// mergeLines validates every line, collecting all failures, and sums the
// quantities of repeated items.
func mergeLines(lines []LineInput, maxLines int) (map[uuid.UUID]int, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	if len(lines) > maxLines {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d lines per request", maxLines))
	}

	var errs error
	merged := make(map[uuid.UUID]int, len(lines))
	for i, line := range lines {
		if line.ItemID == uuid.Nil {
			errs = multierr.Append(errs, fmt.Errorf("lines[%d]: item id is required", i))
			continue
		}
		if line.Quantity < 1 {
			errs = multierr.Append(errs, fmt.Errorf("lines[%d]: quantity must be at least 1", i))
			continue
		}
		merged[line.ItemID] += line.Quantity
	}
	if errs != nil {
		return nil, ValidationFailure("invalid cart lines", errs)
	}
	return merged, nil
}

// ValidationFailure wraps aggregated field errors into one VALIDATION_ERROR
// listing each failure in its details.
func ValidationFailure(message string, errs error) error {
	list := multierr.Errors(errs)
	reasons := make([]string, 0, len(list))
	for _, e := range list {
		reasons = append(reasons, e.Error())
	}
	sort.Strings(reasons)
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, message).
		WithDetails(map[string]any{"errors": reasons})
}

// CartLookupError maps repository lookup failures to typed errors.
func CartLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
}

// InvalidTransition reports a lifecycle move the cart's status forbids.
func InvalidTransition(cart *models.Cart, next enums.CartStatus) error {
	return pkgerrors.New(
		pkgerrors.CodeStateConflict,
		fmt.Sprintf("cart cannot move from %s to %s", cart.Status, next),
	).WithDetails(map[string]any{"cart_id": cart.ID, "status": cart.Status})
}

func lineLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
}

func notOwner() error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "cart belongs to another user")
}

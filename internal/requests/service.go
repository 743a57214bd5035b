package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SeptianAdiraharja/Inventory/internal/cart"
	"github.com/SeptianAdiraharja/Inventory/internal/ledger"
	"github.com/SeptianAdiraharja/Inventory/internal/outbound"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/metrics"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service decides submitted carts and releases approved ones. Every method
// requires a staff actor.
type Service interface {
	ApproveItem(ctx context.Context, actor types.Actor, cartItemID uuid.UUID) (*models.Cart, error)
	RejectItem(ctx context.Context, actor types.Actor, cartItemID uuid.UUID) (*models.Cart, error)
	ApproveCart(ctx context.Context, actor types.Actor, cartID uuid.UUID) (*models.Cart, error)
	RejectCart(ctx context.Context, actor types.Actor, cartID uuid.UUID) (*models.Cart, error)
	ReleaseCart(ctx context.Context, actor types.Actor, cartID uuid.UUID) (*models.OutboundRecord, error)
	ListRequests(ctx context.Context, actor types.Actor, status enums.CartStatus, params pagination.Params) (*cart.Page, error)
}

type service struct {
	carts    cart.CartRepository
	tx       txRunner
	ledger   ledger.Service
	outbound outbound.Service
	logg     *logger.Logger
	metrics  *metrics.StockMetrics
	now      func() time.Time
}

// NewService wires the request lifecycle service. now defaults to time.Now.
func NewService(
	carts cart.CartRepository,
	tx txRunner,
	ledgerSvc ledger.Service,
	outboundSvc outbound.Service,
	logg *logger.Logger,
	stockMetrics *metrics.StockMetrics,
	now func() time.Time,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if outboundSvc == nil {
		return nil, fmt.Errorf("outbound service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		carts:    carts,
		tx:       tx,
		ledger:   ledgerSvc,
		outbound: outboundSvc,
		logg:     logg,
		metrics:  stockMetrics,
		now:      now,
	}, nil
}

// ApproveItem approves one pending line. Stock is untouched.
func (s *service) ApproveItem(ctx context.Context, actor types.Actor, cartItemID uuid.UUID) (result *models.Cart, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("request_approve_item", start, err) }()

	return s.decideLine(ctx, actor, cartItemID, enums.CartItemStatusApproved)
}

// RejectItem rejects a pending or approved line and returns its quantity to
// stock. A line is restored at most once.
func (s *service) RejectItem(ctx context.Context, actor types.Actor, cartItemID uuid.UUID) (result *models.Cart, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("request_reject_item", start, err) }()

	return s.decideLine(ctx, actor, cartItemID, enums.CartItemStatusRejected)
}

func (s *service) decideLine(ctx context.Context, actor types.Actor, cartItemID uuid.UUID, decision enums.CartItemStatus) (*models.Cart, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if cartItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}

	var (
		cartID uuid.UUID
		moves  []models.StockMovement
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.carts.WithTx(tx)
		found, err := repo.FindLine(ctx, cartItemID)
		if err != nil {
			return lineLookupError(err)
		}
		locked, err := s.lockPending(ctx, repo, found.CartID)
		if err != nil {
			return err
		}
		cartID = locked.ID

		line, err := repo.LockLine(ctx, cartItemID)
		if err != nil {
			return lineLookupError(err)
		}
		now := s.now().UTC()
		move, err := s.applyDecision(ctx, tx, repo, actor, locked, line, decision, now)
		if err != nil {
			return err
		}
		if move != nil {
			moves = append(moves, *move)
		}
		return s.settle(ctx, repo, actor, locked, now)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Report(ctx, moves)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"cart_id":      cartID.String(),
		"cart_item_id": cartItemID.String(),
		"decision":     decision.String(),
	}), "request line decided")
	return s.load(ctx, cartID)
}

// ApproveCart approves every still-pending line. Rejected lines stay rejected.
func (s *service) ApproveCart(ctx context.Context, actor types.Actor, cartID uuid.UUID) (result *models.Cart, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("request_approve", start, err) }()

	return s.decideCart(ctx, actor, cartID, enums.CartItemStatusApproved)
}

// RejectCart rejects every line that is not already rejected and returns the
// reserved quantities to stock.
func (s *service) RejectCart(ctx context.Context, actor types.Actor, cartID uuid.UUID) (result *models.Cart, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("request_reject", start, err) }()

	return s.decideCart(ctx, actor, cartID, enums.CartItemStatusRejected)
}

func (s *service) decideCart(ctx context.Context, actor types.Actor, cartID uuid.UUID, decision enums.CartItemStatus) (*models.Cart, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}

	var moves []models.StockMovement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.carts.WithTx(tx)
		locked, err := s.lockPending(ctx, repo, cartID)
		if err != nil {
			return err
		}
		lines, err := repo.LockLines(ctx, locked.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart lines")
		}

		now := s.now().UTC()
		changed := 0
		for i := range lines {
			line := &lines[i]
			switch {
			case line.Status == enums.CartItemStatusRejected:
				continue
			case decision == enums.CartItemStatusApproved && line.Status == enums.CartItemStatusApproved:
				continue
			}
			move, err := s.applyDecision(ctx, tx, repo, actor, locked, line, decision, now)
			if err != nil {
				return err
			}
			if move != nil {
				moves = append(moves, *move)
			}
			changed++
		}
		if decision == enums.CartItemStatusApproved && changed == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart has no pending lines to approve")
		}
		return s.settle(ctx, repo, actor, locked, now)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Report(ctx, moves)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"cart_id":  cartID.String(),
		"decision": decision.String(),
	}), "request decided")
	return s.load(ctx, cartID)
}

// ReleaseCart records the approved lines of an approved cart as an outbound
// snapshot and marks the cart released. Stock was reserved when the lines
// were added, so the ledger is untouched.
func (s *service) ReleaseCart(ctx context.Context, actor types.Actor, cartID uuid.UUID) (record *models.OutboundRecord, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("request_release", start, err) }()

	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.carts.WithTx(tx)
		locked, err := repo.LockByID(ctx, cartID)
		if err != nil {
			return cart.CartLookupError(err)
		}
		if !locked.Status.CanTransitionTo(enums.CartStatusReleased) {
			return cart.InvalidTransition(locked, enums.CartStatusReleased)
		}
		lines, err := repo.LockLines(ctx, locked.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart lines")
		}

		approved := make(map[uuid.UUID]int, len(lines))
		ids := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			if line.Status != enums.CartItemStatusApproved {
				continue
			}
			approved[line.ItemID] = line.Quantity
			ids = append(ids, line.ItemID)
		}
		items, err := s.ledger.LockItems(ctx, tx, ids)
		if err != nil {
			return err
		}
		snapshot := make(types.OutboundLines, 0, len(items))
		for _, item := range items {
			snapshot = append(snapshot, types.OutboundLine{
				ItemID:   item.ID,
				Code:     item.Code,
				Name:     item.Name,
				Quantity: approved[item.ID],
			})
		}

		now := s.now().UTC()
		record, err = s.outbound.Record(ctx, tx, outbound.RecordInput{
			Origin:       enums.OutboundOriginEmployeeCart,
			OriginID:     locked.ID,
			SourceCartID: locked.ID,
			ActorID:      actor.ID,
			Lines:        snapshot,
			ReleasedAt:   now,
		})
		if err != nil {
			return err
		}

		locked.Status = enums.CartStatusReleased
		locked.ReleasedAt = &now
		if err := repo.Update(ctx, locked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark cart released")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"cart_id":            cartID.String(),
		"outbound_record_id": record.ID.String(),
	}), "request released")
	return record, nil
}

// ListRequests lists carts in the given status, pending when empty.
func (s *service) ListRequests(ctx context.Context, actor types.Actor, status enums.CartStatus, params pagination.Params) (*cart.Page, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if status == "" {
		status = enums.CartStatusPending
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart status")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.carts.List(ctx, cart.ListFilter{Status: &status}, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list requests")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(c models.Cart) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	return &cart.Page{Carts: rows, NextCursor: next}, nil
}

// applyDecision moves one line to decision. Rejecting hands the reserved
// quantity back to stock; approving a rejected line is refused because its
// stock is already gone.
func (s *service) applyDecision(
	ctx context.Context,
	tx *gorm.DB,
	repo cart.CartRepository,
	actor types.Actor,
	owner *models.Cart,
	line *models.CartItem,
	decision enums.CartItemStatus,
	now time.Time,
) (*models.StockMovement, error) {
	var move *models.StockMovement
	switch decision {
	case enums.CartItemStatusApproved:
		if line.Status != enums.CartItemStatusPending {
			return nil, lineState(line, decision)
		}
	case enums.CartItemStatusRejected:
		if line.Status == enums.CartItemStatusRejected {
			return nil, lineState(line, decision)
		}
		restored, err := s.ledger.Increase(ctx, tx, ledger.MutationInput{
			ItemID:      line.ItemID,
			Quantity:    line.Quantity,
			Reason:      enums.MovementReasonRequestReject,
			ReferenceID: owner.ID,
			ActorID:     actor.ID,
		})
		if err != nil {
			return nil, err
		}
		move = restored
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid decision %q", decision))
	}

	line.Status = decision
	line.DecidedAt = &now
	if err := repo.UpdateLine(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
	}
	return move, nil
}

// settle closes the cart once no line is pending: approved when any line was
// approved, rejected otherwise.
func (s *service) settle(ctx context.Context, repo cart.CartRepository, actor types.Actor, locked *models.Cart, now time.Time) error {
	lines, err := repo.LockLines(ctx, locked.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart lines")
	}
	anyApproved := false
	for _, line := range lines {
		switch line.Status {
		case enums.CartItemStatusPending:
			return nil
		case enums.CartItemStatusApproved:
			anyApproved = true
		}
	}

	next := enums.CartStatusRejected
	if anyApproved {
		next = enums.CartStatusApproved
	}
	if !locked.Status.CanTransitionTo(next) {
		return cart.InvalidTransition(locked, next)
	}
	decidedBy := actor.ID
	locked.Status = next
	locked.DecidedAt = &now
	locked.DecidedBy = &decidedBy
	if err := repo.Update(ctx, locked); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart status")
	}
	return nil
}

func (s *service) lockPending(ctx context.Context, repo cart.CartRepository, cartID uuid.UUID) (*models.Cart, error) {
	locked, err := repo.LockByID(ctx, cartID)
	if err != nil {
		return nil, cart.CartLookupError(err)
	}
	if locked.Status != enums.CartStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is not awaiting a decision").
			WithDetails(map[string]any{"cart_id": locked.ID, "status": locked.Status})
	}
	return locked, nil
}

func (s *service) load(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	loaded, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, cart.CartLookupError(err)
	}
	return loaded, nil
}

func requireStaff(actor types.Actor) error {
	if actor.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor is required")
	}
	if !actor.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	return nil
}

func lineState(line *models.CartItem, decision enums.CartItemStatus) error {
	return pkgerrors.New(
		pkgerrors.CodeStateConflict,
		fmt.Sprintf("cart item is %s and cannot be %s", line.Status, decision),
	).WithDetails(map[string]any{"cart_item_id": line.ID, "status": line.Status})
}

func lineLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
}

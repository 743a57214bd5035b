package guests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SeptianAdiraharja/Inventory/internal/ledger"
	"github.com/SeptianAdiraharja/Inventory/internal/outbound"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/metrics"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultSessionTTL bounds how long a guest session id is reused.
const DefaultSessionTTL = 12 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type guestLoader interface {
	GetGuest(ctx context.Context, id uuid.UUID) (*models.Guest, error)
}

// Service runs the scan-based guest checkout. Scans only validate against
// stock; the ledger is touched once, when the cart is released.
type Service interface {
	Scan(ctx context.Context, actor types.Actor, guestID uuid.UUID, input ScanInput) (*models.GuestCart, error)
	Release(ctx context.Context, actor types.Actor, guestCartID uuid.UUID) (*models.OutboundRecord, error)
	ViewCart(ctx context.Context, guestID uuid.UUID) (*models.GuestCart, error)
}

// ScanInput is one barcode scan for an item.
type ScanInput struct {
	ItemID   uuid.UUID
	Barcode  string
	Quantity int
}

type service struct {
	repo       Repository
	tx         txRunner
	ledger     ledger.Service
	outbound   outbound.Service
	guests     guestLoader
	sessions   SessionSource
	logg       *logger.Logger
	metrics    *metrics.StockMetrics
	now        func() time.Time
	sessionTTL time.Duration
}

// NewService wires the guest checkout service. now defaults to time.Now and
// a non-positive sessionTTL to DefaultSessionTTL.
func NewService(
	repo Repository,
	tx txRunner,
	ledgerSvc ledger.Service,
	outboundSvc outbound.Service,
	guests guestLoader,
	sessions SessionSource,
	logg *logger.Logger,
	stockMetrics *metrics.StockMetrics,
	now func() time.Time,
	sessionTTL time.Duration,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("guest cart repository required")
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
	if guests == nil {
		return nil, fmt.Errorf("guest loader required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &service{
		repo:       repo,
		tx:         tx,
		ledger:     ledgerSvc,
		outbound:   outboundSvc,
		guests:     guests,
		sessions:   sessions,
		logg:       logg,
		metrics:    stockMetrics,
		now:        now,
		sessionTTL: sessionTTL,
	}, nil
}

// Scan adds qty of the item to the guest's open cart after checking the
// scanned barcode and that the accumulated quantity still fits in stock.
func (s *service) Scan(ctx context.Context, actor types.Actor, guestID uuid.UUID, input ScanInput) (cart *models.GuestCart, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("guest_scan", start, err) }()

	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if guestID == uuid.Nil || input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest id and item id are required")
	}
	barcode := strings.TrimSpace(input.Barcode)
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if _, err := s.guests.GetGuest(ctx, guestID); err != nil {
		return nil, err
	}
	sessionID, err := s.sessions.GuestSession(ctx, guestID.String(), s.sessionTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "guest session unavailable")
	}

	var cartID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// Lock order matches Release: guest cart, then line, then item.
		repo := s.repo.WithTx(tx)
		open, err := repo.EnsureOpen(ctx, guestID, sessionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load guest cart")
		}
		cartID = open.ID

		line, err := repo.LockLineByItem(ctx, open.ID, input.ItemID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = nil
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load guest cart line")
		}

		items, err := s.ledger.LockItems(ctx, tx, []uuid.UUID{input.ItemID})
		if err != nil {
			return err
		}
		item := items[0]
		if strings.TrimSpace(item.Code) != barcode {
			return pkgerrors.New(pkgerrors.CodeBarcodeMismatch, "scanned barcode does not match the item").
				WithDetails(map[string]any{"item_id": item.ID, "barcode": barcode})
		}

		total := input.Quantity
		if line != nil {
			total += line.Quantity
		}
		if total > item.Stock {
			return ledger.InsufficientStock(item, total)
		}

		if line == nil {
			if err := repo.CreateLine(ctx, &models.GuestCartItem{
				GuestCartID: open.ID,
				ItemID:      item.ID,
				Quantity:    total,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create guest cart line")
			}
			return nil
		}
		if err := repo.UpdateLineQuantity(ctx, line.ID, total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update guest cart line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"guest_id":      guestID.String(),
		"guest_cart_id": cartID.String(),
		"item_id":       input.ItemID.String(),
		"quantity":      input.Quantity,
	}), "guest item scanned")
	return s.load(ctx, cartID)
}

// Release commits the guest cart in one transaction: the outbound snapshot is
// written, every line is deducted from stock in ascending item order and the
// cart is flagged released. Any failure leaves all three untouched.
func (s *service) Release(ctx context.Context, actor types.Actor, guestCartID uuid.UUID) (record *models.OutboundRecord, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("guest_release", start, err) }()

	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if guestCartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest cart id is required")
	}

	var (
		guestID uuid.UUID
		moves   []models.StockMovement
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.LockByID(ctx, guestCartID)
		if err != nil {
			return cartLookupError(err)
		}
		guestID = locked.GuestID
		if locked.IsReleased {
			return alreadyReleased(locked.ID)
		}

		lines, err := repo.LockLines(ctx, locked.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load guest cart lines")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart has no items")
		}

		quantities := make(map[uuid.UUID]int, len(lines))
		ids := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			quantities[line.ItemID] = line.Quantity
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
				Quantity: quantities[item.ID],
			})
		}
		now := s.now().UTC()
		record, err = s.outbound.Record(ctx, tx, outbound.RecordInput{
			Origin:       enums.OutboundOriginGuestRelease,
			OriginID:     locked.GuestID,
			SourceCartID: locked.ID,
			ActorID:      actor.ID,
			Lines:        snapshot,
			ReleasedAt:   now,
		})
		if err != nil {
			return err
		}

		for _, item := range items {
			move, err := s.ledger.Decrease(ctx, tx, ledger.MutationInput{
				ItemID:      item.ID,
				Quantity:    quantities[item.ID],
				Reason:      enums.MovementReasonGuestRelease,
				ReferenceID: locked.ID,
				ActorID:     actor.ID,
			})
			if err != nil {
				return err
			}
			moves = append(moves, *move)
		}

		affected, err := repo.MarkReleased(ctx, locked.ID, actor.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark guest cart released")
		}
		if affected != 1 {
			return alreadyReleased(locked.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Report(ctx, moves)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"guest_id":           guestID.String(),
		"guest_cart_id":      guestCartID.String(),
		"outbound_record_id": record.ID.String(),
	})
	s.logg.Info(logCtx, "guest cart released")
	if err := s.sessions.EndGuestSession(ctx, guestID.String()); err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "end guest session failed")
	}
	return record, nil
}

// ViewCart returns the guest's open cart with item names and codes.
func (s *service) ViewCart(ctx context.Context, guestID uuid.UUID) (*models.GuestCart, error) {
	if guestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest id is required")
	}
	cart, err := s.repo.FindOpenByGuest(ctx, guestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "guest has no open cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load guest cart")
	}
	return cart, nil
}

func (s *service) load(ctx context.Context, cartID uuid.UUID) (*models.GuestCart, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, cartLookupError(err)
	}
	return cart, nil
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

func alreadyReleased(cartID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeAlreadyReleased, "guest cart was already released").
		WithDetails(map[string]any{"guest_cart_id": cartID})
}

func cartLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "guest cart not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load guest cart")
}

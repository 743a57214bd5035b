package inbound

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SeptianAdiraharja/Inventory/internal/ledger"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/metrics"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type supplierLoader interface {
	GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

// Service records supplier receipts and keeps stock reconciled with them.
type Service interface {
	Receive(ctx context.Context, actorID uuid.UUID, input ReceiptInput) (*models.InboundRecord, error)
	EditReceipt(ctx context.Context, actorID, recordID uuid.UUID, input ReceiptInput) (*models.InboundRecord, error)
	DeleteReceipt(ctx context.Context, actorID, recordID uuid.UUID) error
	Get(ctx context.Context, recordID uuid.UUID) (*models.InboundRecord, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*Page, error)
}

// ReceiptInput is the payload for receiving or editing a receipt.
type ReceiptInput struct {
	ItemID     uuid.UUID
	SupplierID uuid.UUID
	Quantity   int
	ExpiredAt  *time.Time
}

// Page is one page of receipts, newest first.
type Page struct {
	Records    []models.InboundRecord `json:"records"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

type service struct {
	repo      Repository
	tx        txRunner
	ledger    ledger.Service
	suppliers supplierLoader
	logg      *logger.Logger
	metrics   *metrics.StockMetrics
	now       func() time.Time
}

// NewService builds the inbound receiving service. now defaults to time.Now.
func NewService(
	repo Repository,
	tx txRunner,
	ledgerSvc ledger.Service,
	suppliers supplierLoader,
	logg *logger.Logger,
	stockMetrics *metrics.StockMetrics,
	now func() time.Time,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inbound repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      repo,
		tx:        tx,
		ledger:    ledgerSvc,
		suppliers: suppliers,
		logg:      logg,
		metrics:   stockMetrics,
		now:       now,
	}, nil
}

func (s *service) Receive(ctx context.Context, actorID uuid.UUID, input ReceiptInput) (record *models.InboundRecord, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("inbound_receive", start, err) }()

	if err := s.validate(actorID, &input); err != nil {
		return nil, err
	}
	if _, err := s.suppliers.GetSupplier(ctx, input.SupplierID); err != nil {
		return nil, err
	}

	created := &models.InboundRecord{
		ID:         uuid.New(),
		ItemID:     input.ItemID,
		SupplierID: input.SupplierID,
		Quantity:   input.Quantity,
		ExpiredAt:  input.ExpiredAt,
		CreatedBy:  actorID,
	}

	var moves []models.StockMovement
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		move, err := s.ledger.Increase(ctx, tx, ledger.MutationInput{
			ItemID:      created.ItemID,
			Quantity:    created.Quantity,
			Reason:      enums.MovementReasonInboundReceive,
			ReferenceID: created.ID,
			ActorID:     actorID,
		})
		if err != nil {
			return err
		}
		moves = append(moves, *move)
		if err := s.repo.WithTx(tx).Create(ctx, created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create inbound record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Report(ctx, moves)
	s.logg.Info(s.logg.WithField(ctx, "inbound_record_id", created.ID.String()), "inbound receipt recorded")
	return s.Get(ctx, created.ID)
}

// EditReceipt reconciles stock with the edited receipt in one transaction. When
// the item changes, both item rows are locked in ascending id order before the
// old quantity is reversed and the new one applied.
func (s *service) EditReceipt(ctx context.Context, actorID, recordID uuid.UUID, input ReceiptInput) (record *models.InboundRecord, err error) {
	start := time.Now()
	defer func() { s.metrics.Track("inbound_edit", start, err) }()

	if recordID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id is required")
	}
	if err := s.validate(actorID, &input); err != nil {
		return nil, err
	}
	if _, err := s.suppliers.GetSupplier(ctx, input.SupplierID); err != nil {
		return nil, err
	}

	var moves []models.StockMovement
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.LockByID(ctx, recordID)
		if err != nil {
			return recordLookupError(err)
		}

		if _, err := s.ledger.LockItems(ctx, tx, []uuid.UUID{current.ItemID, input.ItemID}); err != nil {
			return err
		}

		mutate := func(itemID uuid.UUID, delta int) error {
			if delta == 0 {
				return nil
			}
			in := ledger.MutationInput{
				ItemID:      itemID,
				Quantity:    abs(delta),
				Reason:      enums.MovementReasonInboundEdit,
				ReferenceID: current.ID,
				ActorID:     actorID,
			}
			var move *models.StockMovement
			if delta > 0 {
				move, err = s.ledger.Increase(ctx, tx, in)
			} else {
				move, err = s.ledger.Decrease(ctx, tx, in)
			}
			if err != nil {
				return err
			}
			moves = append(moves, *move)
			return nil
		}

		if current.ItemID == input.ItemID {
			if err := mutate(current.ItemID, input.Quantity-current.Quantity); err != nil {
				return err
			}
		} else {
			if err := mutate(current.ItemID, -current.Quantity); err != nil {
				return err
			}
			if err := mutate(input.ItemID, input.Quantity); err != nil {
				return err
			}
		}

		current.ItemID = input.ItemID
		current.SupplierID = input.SupplierID
		current.Quantity = input.Quantity
		current.ExpiredAt = input.ExpiredAt
		if err := repo.Update(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update inbound record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Report(ctx, moves)
	s.logg.Info(s.logg.WithField(ctx, "inbound_record_id", recordID.String()), "inbound receipt edited")
	return s.Get(ctx, recordID)
}

// DeleteReceipt reverses the receipt's quantity and removes it. It fails with
// INSUFFICIENT_STOCK when the received units were already handed out.
func (s *service) DeleteReceipt(ctx context.Context, actorID, recordID uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.metrics.Track("inbound_delete", start, err) }()

	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor is required")
	}
	if recordID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "record id is required")
	}

	var moves []models.StockMovement
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.LockByID(ctx, recordID)
		if err != nil {
			return recordLookupError(err)
		}
		move, err := s.ledger.Decrease(ctx, tx, ledger.MutationInput{
			ItemID:      current.ItemID,
			Quantity:    current.Quantity,
			Reason:      enums.MovementReasonInboundDelete,
			ReferenceID: current.ID,
			ActorID:     actorID,
		})
		if err != nil {
			return err
		}
		moves = append(moves, *move)
		if err := repo.Delete(ctx, current.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete inbound record")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.ledger.Report(ctx, moves)
	s.logg.Info(s.logg.WithField(ctx, "inbound_record_id", recordID.String()), "inbound receipt deleted")
	return nil
}

func (s *service) Get(ctx context.Context, recordID uuid.UUID) (*models.InboundRecord, error) {
	if recordID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id is required")
	}
	record, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		return nil, recordLookupError(err)
	}
	return record, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, filter, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inbound records")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(r models.InboundRecord) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})
	return &Page{Records: rows, NextCursor: next}, nil
}

// validate checks the payload and normalizes the expiry to a calendar date.
func (s *service) validate(actorID uuid.UUID, input *ReceiptInput) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor is required")
	}
	if input.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if input.SupplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	if input.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.ExpiredAt != nil {
		expiry := input.ExpiredAt.Format(dateLayout)
		today := s.now().Format(dateLayout)
		if expiry < today {
			return pkgerrors.New(pkgerrors.CodeValidation, "expiry date must be today or later").
				WithDetails(map[string]any{"expired_at": expiry, "today": today})
		}
		day := time.Date(input.ExpiredAt.Year(), input.ExpiredAt.Month(), input.ExpiredAt.Day(), 0, 0, 0, 0, time.UTC)
		input.ExpiredAt = &day
	}
	return nil
}

func recordLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inbound record not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inbound record")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

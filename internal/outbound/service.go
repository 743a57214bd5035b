package outbound

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SeptianAdiraharja/Inventory/pkg/db"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the append-only ledger of dispensed stock.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.OutboundRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*models.OutboundRecord, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*Page, error)
}

// RecordInput is the snapshot written when stock physically leaves.
// SourceCartID is the released cart; it may be recorded only once.
type RecordInput struct {
	Origin       enums.OutboundOrigin
	OriginID     uuid.UUID
	SourceCartID uuid.UUID
	ActorID      uuid.UUID
	Lines        types.OutboundLines
	ReleasedAt   time.Time
}

// Page is one page of outbound records, newest first.
type Page struct {
	Records    []models.OutboundRecord `json:"records"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the outbound ledger service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("outbound repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Record writes the snapshot on the caller's transaction, so it commits or
// rolls back together with the stock changes it describes.
func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.OutboundRecord, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	record := &models.OutboundRecord{
		Origin:       input.Origin,
		OriginID:     input.OriginID,
		SourceCartID: input.SourceCartID,
		ActorID:      input.ActorID,
		Lines:        input.Lines,
		TotalQty:     input.Lines.TotalQuantity(),
		ReleasedAt:   input.ReleasedAt.UTC(),
	}
	if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeAlreadyReleased, err, "cart already has an outbound record").
				WithDetails(map[string]any{"source_cart_id": input.SourceCartID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create outbound record")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"outbound_record_id": record.ID.String(),
		"origin":             record.Origin.String(),
		"total_qty":          record.TotalQty,
	}), "outbound record written")
	return record, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.OutboundRecord, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbound record id is required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "outbound record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load outbound record")
	}
	return record, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*Page, error) {
	if filter.Origin != nil && !filter.Origin.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid outbound origin")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, filter, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list outbound records")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(r models.OutboundRecord) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})
	return &Page{Records: rows, NextCursor: next}, nil
}

func (in RecordInput) validate() error {
	if !in.Origin.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid outbound origin %q", in.Origin))
	}
	if in.OriginID == uuid.Nil || in.SourceCartID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "origin and source cart are required")
	}
	if in.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor is required")
	}
	if len(in.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart has no items")
	}
	for _, line := range in.Lines {
		if line.ItemID == uuid.Nil || line.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "outbound lines need an item and a positive quantity")
		}
	}
	if in.ReleasedAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "release time is required")
	}
	return nil
}

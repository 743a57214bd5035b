package outbound

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/api/controllers/dto"
	"github.com/SeptianAdiraharja/Inventory/api/responses"
	"github.com/SeptianAdiraharja/Inventory/api/validators"
	outboundsvc "github.com/SeptianAdiraharja/Inventory/internal/outbound"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
)

// Reader is the query side of the outbound ledger. Records are only ever
// written by a release transaction.
type Reader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.OutboundRecord, error)
	List(ctx context.Context, filter outboundsvc.ListFilter, params pagination.Params) (*outboundsvc.Page, error)
}

func unavailable(r *http.Request, w http.ResponseWriter, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "outbound service unavailable"))
}

// List accepts ?origin (employee_cart, guest_release) and ?origin_id.
func List(svc Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter outboundsvc.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("origin")); raw != "" {
			origin, err := enums.ParseOutboundOrigin(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid origin").WithDetails(map[string]any{"field": "origin"}))
				return
			}
			filter.Origin = &origin
		}
		if filter.OriginID, err = validators.ParseOptionalUUIDQuery(r, "origin_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, dto.NewOutboundRecords(page.Records), page.NextCursor)
	}
}

func Get(svc Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		recordID, err := validators.ParseUUIDParam(r, "recordID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.Get(r.Context(), recordID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewOutboundRecord(record))
	}
}

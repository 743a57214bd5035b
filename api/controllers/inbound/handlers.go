package inbound

import (
	"net/http"
	"strings"
	"time"

	"github.com/SeptianAdiraharja/Inventory/api/controllers/dto"
	"github.com/SeptianAdiraharja/Inventory/api/middleware"
	"github.com/SeptianAdiraharja/Inventory/api/responses"
	"github.com/SeptianAdiraharja/Inventory/api/validators"
	inboundsvc "github.com/SeptianAdiraharja/Inventory/internal/inbound"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
)

func unavailable(r *http.Request, w http.ResponseWriter, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inbound service unavailable"))
}

func Receive(svc inboundsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		actor, err := middleware.RequireActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeReceipt(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Receive(r.Context(), actor.ID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto.NewInboundRecord(record))
	}
}

// EditReceipt replaces a receipt. Stock moves by the difference, or across
// items when the item changes.
func EditReceipt(svc inboundsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		actor, err := middleware.RequireActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recordID, err := validators.ParseUUIDParam(r, "recordID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeReceipt(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.EditReceipt(r.Context(), actor.ID, recordID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewInboundRecord(record))
	}
}

func DeleteReceipt(svc inboundsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		actor, err := middleware.RequireActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recordID, err := validators.ParseUUIDParam(r, "recordID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteReceipt(r.Context(), actor.ID, recordID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func GetReceipt(svc inboundsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, dto.NewInboundRecord(record))
	}
}

// ListReceipts accepts ?item_id and ?supplier_id.
func ListReceipts(svc inboundsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		itemID, err := validators.ParseOptionalUUIDQuery(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.ParseOptionalUUIDQuery(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), inboundsvc.ListFilter{ItemID: itemID, SupplierID: supplierID}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, dto.NewInboundRecords(page.Records), page.NextCursor)
	}
}

func decodeReceipt(r *http.Request) (inboundsvc.ReceiptInput, error) {
	var payload dto.ReceiptRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return inboundsvc.ReceiptInput{}, err
	}
	input := inboundsvc.ReceiptInput{
		ItemID:     payload.ItemID,
		SupplierID: payload.SupplierID,
		Quantity:   payload.Quantity,
	}
	if payload.ExpiredAt != nil && strings.TrimSpace(*payload.ExpiredAt) != "" {
		expiry, err := time.Parse(dto.DateLayout, strings.TrimSpace(*payload.ExpiredAt))
		if err != nil {
			return inboundsvc.ReceiptInput{}, pkgerrors.New(pkgerrors.CodeValidation, "expired_at must use YYYY-MM-DD").
				WithDetails(map[string]string{"expired_at": "is invalid"})
		}
		input.ExpiredAt = &expiry
	}
	return input, nil
}

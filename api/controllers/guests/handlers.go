package guests

import (
	"net/http"

	"github.com/SeptianAdiraharja/Inventory/api/controllers/dto"
	"github.com/SeptianAdiraharja/Inventory/api/middleware"
	"github.com/SeptianAdiraharja/Inventory/api/responses"
	"github.com/SeptianAdiraharja/Inventory/api/validators"
	guestsvc "github.com/SeptianAdiraharja/Inventory/internal/guests"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
)

const maxBarcodeLength = 64

func unavailable(r *http.Request, w http.ResponseWriter, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "guest service unavailable"))
}

// Scan adds a scanned item to the guest's open cart. Stock is checked but not
// moved until release.
func Scan(svc guestsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		guestID, err := validators.ParseUUIDParam(r, "guestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dto.ScanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Scan(r.Context(), actor, guestID, guestsvc.ScanInput{
			ItemID:   payload.ItemID,
			Barcode:  validators.SanitizeString(payload.Barcode, maxBarcodeLength),
			Quantity: payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewGuestCart(cart))
	}
}

func ViewCart(svc guestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		guestID, err := validators.ParseUUIDParam(r, "guestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cart, err := svc.ViewCart(r.Context(), guestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewGuestCart(cart))
	}
}

// Release decrements stock for every line and writes the outbound record.
func Release(svc guestsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		guestCartID, err := validators.ParseUUIDParam(r, "guestCartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Release(r.Context(), actor, guestCartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto.NewOutboundRecord(record))
	}
}

package requests

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/api/controllers/dto"
	"github.com/SeptianAdiraharja/Inventory/api/middleware"
	"github.com/SeptianAdiraharja/Inventory/api/responses"
	"github.com/SeptianAdiraharja/Inventory/api/validators"
	requestsvc "github.com/SeptianAdiraharja/Inventory/internal/requests"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
)

type decision func(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.Cart, error)

func unavailable(r *http.Request, w http.ResponseWriter, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
}

// ListRequests lists carts by ?status, pending when omitted.
func ListRequests(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.CartStatus(strings.TrimSpace(r.URL.Query().Get("status")))
		page, err := svc.ListRequests(r.Context(), actor, status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, dto.NewCarts(page.Carts), page.NextCursor)
	}
}

func ApproveItem(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return decide(nil, "cartItemID", logg)
	}
	return decide(svc.ApproveItem, "cartItemID", logg)
}

// RejectItem hands the line's reserved quantity back to stock.
func RejectItem(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return decide(nil, "cartItemID", logg)
	}
	return decide(svc.RejectItem, "cartItemID", logg)
}

func ApproveCart(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return decide(nil, "cartID", logg)
	}
	return decide(svc.ApproveCart, "cartID", logg)
}

func RejectCart(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return decide(nil, "cartID", logg)
	}
	return decide(svc.RejectCart, "cartID", logg)
}

// ReleaseCart hands an approved cart over and returns its outbound record.
func ReleaseCart(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		cartID, err := validators.ParseUUIDParam(r, "cartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.ReleaseCart(r.Context(), actor, cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto.NewOutboundRecord(record))
	}
}

func decide(fn decision, param string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fn == nil {
			unavailable(r, w, logg)
			return
		}
		actor, err := middleware.RequireActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := fn(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewCart(record))
	}
}

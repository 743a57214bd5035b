package catalog

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/api/controllers/dto"
	"github.com/SeptianAdiraharja/Inventory/api/responses"
	"github.com/SeptianAdiraharja/Inventory/api/validators"
	"github.com/SeptianAdiraharja/Inventory/internal/items"
	"github.com/SeptianAdiraharja/Inventory/internal/ledger"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
)

const maxSearchLength = 100

// MovementReader is the read side of the stock ledger.
type MovementReader interface {
	ListMovements(ctx context.Context, itemID uuid.UUID, params pagination.Params) (*ledger.MovementPage, error)
}

func unavailable(r *http.Request, w http.ResponseWriter, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
}

// ListItems supports ?category_id, ?q (name or code) and ?max_stock for low
// stock views.
func ListItems(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}

		categoryID, err := validators.ParseOptionalUUIDQuery(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := items.ListItemsFilter{
			CategoryID: categoryID,
			Query:      validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLength),
		}
		if strings.TrimSpace(r.URL.Query().Get("max_stock")) != "" {
			maxStock, err := validators.ParseQueryInt(r, "max_stock", 0, 0, 1<<31-1)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.MaxStock = &maxStock
		}

		rows, err := svc.ListItems(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewItems(rows))
	}
}

func GetItem(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewItem(item))
	}
}

// GetItemByCode resolves a scanned barcode to its item.
func GetItemByCode(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		code := validators.SanitizeString(chi.URLParam(r, "code"), maxSearchLength)
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "code is required"))
			return
		}
		item, err := svc.GetItemByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewItem(item))
	}
}

func ListCategories(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		rows, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewCategories(rows))
	}
}

func ListSuppliers(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		rows, err := svc.ListSuppliers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewSuppliers(rows))
	}
}

func GetSupplier(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		supplierID, err := validators.ParseUUIDParam(r, "supplierID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplier, err := svc.GetSupplier(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewSupplier(supplier))
	}
}

func GetGuest(svc items.Service, logg *logger.Logger) http.HandlerFunc {
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
		guest, err := svc.GetGuest(r.Context(), guestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewGuest(guest))
	}
}

// ListMovements pages through the journal of one item, newest first.
func ListMovements(svc MovementReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r, w, logg)
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListMovements(r.Context(), itemID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, dto.NewStockMovements(page.Movements), page.NextCursor)
	}
}

package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/api/controllers/dto"
	"github.com/SeptianAdiraharja/Inventory/internal/items"
	"github.com/SeptianAdiraharja/Inventory/internal/ledger"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
)

type stubItems struct {
	item       *models.Item
	rows       []models.Item
	err        error
	lastFilter items.ListItemsFilter
	lastCode   string
}

func (s *stubItems) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.item, s.err
}

func (s *stubItems) GetItemByCode(ctx context.Context, code string) (*models.Item, error) {
	s.lastCode = code
	return s.item, s.err
}

func (s *stubItems) ListItems(ctx context.Context, filter items.ListItemsFilter) ([]models.Item, error) {
	s.lastFilter = filter
	return s.rows, s.err
}

func (s *stubItems) GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	return nil, s.err
}

func (s *stubItems) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return nil, s.err
}

func (s *stubItems) GetGuest(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	return nil, s.err
}

func (s *stubItems) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, s.err
}

type stubMovements struct {
	page   *ledger.MovementPage
	params pagination.Params
}

func (s *stubMovements) ListMovements(ctx context.Context, itemID uuid.UUID, params pagination.Params) (*ledger.MovementPage, error) {
	s.params = params
	return s.page, nil
}

func withParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestListItemsPassesFilters(t *testing.T) {
	svc := &stubItems{rows: []models.Item{{ID: uuid.New(), Name: "Pen", Code: "X123", Stock: 3}}}
	categoryID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items?q=+pen+&max_stock=5&category_id="+categoryID.String(), nil)
	resp := httptest.NewRecorder()
	ListItems(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastFilter.Query != "pen" {
		t.Fatalf("expected trimmed query, got %q", svc.lastFilter.Query)
	}
	if svc.lastFilter.MaxStock == nil || *svc.lastFilter.MaxStock != 5 {
		t.Fatalf("expected max stock 5, got %v", svc.lastFilter.MaxStock)
	}
	if svc.lastFilter.CategoryID == nil || *svc.lastFilter.CategoryID != categoryID {
		t.Fatalf("expected category filter")
	}

	var envelope struct {
		Data []dto.Item `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Code != "X123" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestListItemsRejectsBadCategory(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items?category_id=nope", nil)
	resp := httptest.NewRecorder()
	ListItems(&stubItems{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetItemByCodeTrimsBarcode(t *testing.T) {
	svc := &stubItems{item: &models.Item{ID: uuid.New(), Code: "X123"}}
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "code", " X123 ")
	resp := httptest.NewRecorder()
	GetItemByCode(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastCode != "X123" {
		t.Fatalf("expected trimmed code, got %q", svc.lastCode)
	}
}

func TestGetItemNotFound(t *testing.T) {
	svc := &stubItems{err: pkgerrors.New(pkgerrors.CodeNotFound, "item not found")}
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "itemID", uuid.NewString())
	resp := httptest.NewRecorder()
	GetItem(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestListMovementsPaginates(t *testing.T) {
	svc := &stubMovements{page: &ledger.MovementPage{
		Movements:  []models.StockMovement{{ID: uuid.New(), Delta: -4, StockAfter: 6}},
		NextCursor: "abc",
	}}
	req := withParam(httptest.NewRequest(http.MethodGet, "/?limit=1", nil), "itemID", uuid.NewString())
	resp := httptest.NewRecorder()
	ListMovements(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.params.Limit != 1 {
		t.Fatalf("expected limit 1, got %d", svc.params.Limit)
	}
	var envelope struct {
		Data struct {
			Items      []dto.StockMovement `json:"items"`
			NextCursor string              `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NextCursor != "abc" || len(envelope.Data.Items) != 1 || envelope.Data.Items[0].StockAfter != 6 {
		t.Fatalf("unexpected page %+v", envelope.Data)
	}
}

func TestCatalogNilService(t *testing.T) {
	resp := httptest.NewRecorder()
	ListCategories(nil, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

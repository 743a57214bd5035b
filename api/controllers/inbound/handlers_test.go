package inbound

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/api/controllers/dto"
	"github.com/SeptianAdiraharja/Inventory/api/middleware"
	inboundsvc "github.com/SeptianAdiraharja/Inventory/internal/inbound"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
)

type stubInbound struct {
	record     *models.InboundRecord
	page       *inboundsvc.Page
	err        error
	lastInput  inboundsvc.ReceiptInput
	lastActor  uuid.UUID
	deleted    uuid.UUID
	lastFilter inboundsvc.ListFilter
}

func (s *stubInbound) Receive(ctx context.Context, actorID uuid.UUID, input inboundsvc.ReceiptInput) (*models.InboundRecord, error) {
	s.lastActor = actorID
	s.lastInput = input
	return s.record, s.err
}

func (s *stubInbound) EditReceipt(ctx context.Context, actorID, recordID uuid.UUID, input inboundsvc.ReceiptInput) (*models.InboundRecord, error) {
	s.lastInput = input
	return s.record, s.err
}

func (s *stubInbound) DeleteReceipt(ctx context.Context, actorID, recordID uuid.UUID) error {
	s.deleted = recordID
	return s.err
}

func (s *stubInbound) Get(ctx context.Context, recordID uuid.UUID) (*models.InboundRecord, error) {
	return s.record, s.err
}

func (s *stubInbound) List(ctx context.Context, filter inboundsvc.ListFilter, params pagination.Params) (*inboundsvc.Page, error) {
	s.lastFilter = filter
	return s.page, s.err
}

var admin = types.Actor{ID: uuid.MustParse("33333333-3333-3333-3333-333333333333"), Role: enums.RoleAdmin}

func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), admin))
}

func withParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestReceiveParsesExpiry(t *testing.T) {
	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	svc := &stubInbound{record: &models.InboundRecord{ID: uuid.New(), Quantity: 5, ExpiredAt: &expiry}}
	itemID, supplierID := uuid.New(), uuid.New()

	body := fmt.Sprintf(`{"item_id":"%s","supplier_id":"%s","quantity":5,"expired_at":"2026-12-31"}`, itemID, supplierID)
	req := asAdmin(httptest.NewRequest(http.MethodPost, "/api/v1/inbound", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	Receive(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastActor != admin.ID || svc.lastInput.ItemID != itemID || svc.lastInput.Quantity != 5 {
		t.Fatalf("unexpected input %+v", svc.lastInput)
	}
	if svc.lastInput.ExpiredAt == nil || !svc.lastInput.ExpiredAt.Equal(expiry) {
		t.Fatalf("expected expiry %v, got %v", expiry, svc.lastInput.ExpiredAt)
	}

	var envelope struct {
		Data dto.InboundRecord `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ExpiredAt == nil || *envelope.Data.ExpiredAt != "2026-12-31" {
		t.Fatalf("expected date formatted expiry, got %v", envelope.Data.ExpiredAt)
	}
}

func TestReceiveRejectsMalformedExpiry(t *testing.T) {
	body := fmt.Sprintf(`{"item_id":"%s","supplier_id":"%s","quantity":5,"expired_at":"31/12/2026"}`, uuid.New(), uuid.New())
	req := asAdmin(httptest.NewRequest(http.MethodPost, "/api/v1/inbound", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	svc := &stubInbound{}
	Receive(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastActor != uuid.Nil {
		t.Fatalf("service should not be called")
	}
}

func TestDeleteReceiptInsufficientStock(t *testing.T) {
	svc := &stubInbound{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock already consumed")}
	req := asAdmin(withParam(httptest.NewRequest(http.MethodDelete, "/", nil), "recordID", uuid.NewString()))
	resp := httptest.NewRecorder()
	DeleteReceipt(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestDeleteReceiptNoContent(t *testing.T) {
	recordID := uuid.New()
	svc := &stubInbound{}
	req := asAdmin(withParam(httptest.NewRequest(http.MethodDelete, "/", nil), "recordID", recordID.String()))
	resp := httptest.NewRecorder()
	DeleteReceipt(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if svc.deleted != recordID {
		t.Fatalf("expected %s deleted, got %s", recordID, svc.deleted)
	}
}

func TestListReceiptsFilters(t *testing.T) {
	itemID := uuid.New()
	svc := &stubInbound{page: &inboundsvc.Page{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/inbound?item_id="+itemID.String(), nil)
	resp := httptest.NewRecorder()
	ListReceipts(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastFilter.ItemID == nil || *svc.lastFilter.ItemID != itemID || svc.lastFilter.SupplierID != nil {
		t.Fatalf("unexpected filter %+v", svc.lastFilter)
	}
}

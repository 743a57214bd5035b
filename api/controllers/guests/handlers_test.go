package guests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/api/controllers/dto"
	"github.com/SeptianAdiraharja/Inventory/api/middleware"
	guestsvc "github.com/SeptianAdiraharja/Inventory/internal/guests"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
)

type stubGuests struct {
	cart      *models.GuestCart
	outbound  *models.OutboundRecord
	err       error
	lastScan  guestsvc.ScanInput
	lastGuest uuid.UUID
}

func (s *stubGuests) Scan(ctx context.Context, actor types.Actor, guestID uuid.UUID, input guestsvc.ScanInput) (*models.GuestCart, error) {
	s.lastGuest = guestID
	s.lastScan = input
	return s.cart, s.err
}

func (s *stubGuests) Release(ctx context.Context, actor types.Actor, guestCartID uuid.UUID) (*models.OutboundRecord, error) {
	return s.outbound, s.err
}

func (s *stubGuests) ViewCart(ctx context.Context, guestID uuid.UUID) (*models.GuestCart, error) {
	s.lastGuest = guestID
	return s.cart, s.err
}

var admin = types.Actor{ID: uuid.MustParse("55555555-5555-5555-5555-555555555555"), Role: enums.RoleAdmin}

func staffRequest(method, body, key, value string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	return req.WithContext(middleware.WithActor(ctx, admin))
}

func TestScanTrimsBarcode(t *testing.T) {
	guestID, itemID := uuid.New(), uuid.New()
	svc := &stubGuests{cart: &models.GuestCart{
		ID:      uuid.New(),
		GuestID: guestID,
		Items:   []models.GuestCartItem{{ID: uuid.New(), ItemID: itemID, Quantity: 3, Item: &models.Item{Code: "X123"}}},
	}}
	body := fmt.Sprintf(`{"item_id":"%s","barcode":"  X123 ","quantity":3}`, itemID)
	resp := httptest.NewRecorder()
	Scan(svc, nil).ServeHTTP(resp, staffRequest(http.MethodPost, body, "guestID", guestID.String()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastScan.Barcode != "X123" || svc.lastScan.Quantity != 3 || svc.lastGuest != guestID {
		t.Fatalf("unexpected scan input %+v", svc.lastScan)
	}
	var envelope struct {
		Data dto.GuestCart `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].ItemCode != "X123" {
		t.Fatalf("unexpected cart %+v", envelope.Data)
	}
}

func TestScanBarcodeMismatch(t *testing.T) {
	svc := &stubGuests{err: pkgerrors.New(pkgerrors.CodeBarcodeMismatch, "barcode does not match item")}
	body := fmt.Sprintf(`{"item_id":"%s","barcode":"Y999","quantity":1}`, uuid.New())
	resp := httptest.NewRecorder()
	Scan(svc, nil).ServeHTTP(resp, staffRequest(http.MethodPost, body, "guestID", uuid.NewString()))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestScanRequiresBarcode(t *testing.T) {
	body := fmt.Sprintf(`{"item_id":"%s","quantity":1}`, uuid.New())
	resp := httptest.NewRecorder()
	Scan(&stubGuests{}, nil).ServeHTTP(resp, staffRequest(http.MethodPost, body, "guestID", uuid.NewString()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestReleaseAlreadyReleased(t *testing.T) {
	svc := &stubGuests{err: pkgerrors.New(pkgerrors.CodeAlreadyReleased, "guest cart already released")}
	resp := httptest.NewRecorder()
	Release(svc, nil).ServeHTTP(resp, staffRequest(http.MethodPost, "", "guestCartID", uuid.NewString()))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestReleaseCreated(t *testing.T) {
	svc := &stubGuests{outbound: &models.OutboundRecord{ID: uuid.New(), Origin: enums.OutboundOriginGuestRelease, TotalQty: 3}}
	resp := httptest.NewRecorder()
	Release(svc, nil).ServeHTTP(resp, staffRequest(http.MethodPost, "", "guestCartID", uuid.NewString()))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestViewCartNotFound(t *testing.T) {
	svc := &stubGuests{err: pkgerrors.New(pkgerrors.CodeNotFound, "open guest cart not found")}
	resp := httptest.NewRecorder()
	ViewCart(svc, nil).ServeHTTP(resp, staffRequest(http.MethodGet, "", "guestID", uuid.NewString()))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

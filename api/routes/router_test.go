package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SeptianAdiraharja/Inventory/internal/outbound"
	pkgAuth "github.com/SeptianAdiraharja/Inventory/pkg/auth"
	"github.com/SeptianAdiraharja/Inventory/pkg/config"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/metrics"
	"github.com/SeptianAdiraharja/Inventory/pkg/pagination"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubOutbound struct{}

func (stubOutbound) Get(ctx context.Context, id uuid.UUID) (*models.OutboundRecord, error) {
	return &models.OutboundRecord{ID: id}, nil
}

func (stubOutbound) List(ctx context.Context, filter outbound.ListFilter, params pagination.Params) (*outbound.Page, error) {
	return &outbound.Page{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "inventory-test", ExpirationMinutes: 60},
		Inventory: config.InventoryConfig{
			IdempotencyTTL: time.Hour,
			ScanRateLimit:  10,
			ScanRateWindow: time.Minute,
		},
	}
}

func newTestRouter(t *testing.T, dbErr error) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	metrics.NewStockMetrics(reg)
	handler := NewRouter(
		cfg,
		logger.Nop(),
		stubPinger{err: dbErr},
		nil,
		Stores{},
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		stubOutbound{},
	)
	return handler, cfg
}

func bearer(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func serve(handler http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	handler, _ := newTestRouter(t, nil)

	if resp := serve(handler, http.MethodGet, "/health/live", ""); resp.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", resp.Code)
	}
	resp := serve(handler, http.MethodGet, "/health/ready", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestReadyReportsDatabaseOutage(t *testing.T) {
	handler, _ := newTestRouter(t, context.DeadlineExceeded)
	if resp := serve(handler, http.MethodGet, "/health/ready", ""); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestMetricsExposed(t *testing.T) {
	handler, _ := newTestRouter(t, nil)
	if resp := serve(handler, http.MethodGet, "/metrics", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	handler, _ := newTestRouter(t, nil)
	if resp := serve(handler, http.MethodGet, "/api/v1/cart", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestStaffRoutesRejectEmployees(t *testing.T) {
	handler, cfg := newTestRouter(t, nil)
	employee := bearer(t, cfg, enums.RoleEmployee)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/inbound"},
		{http.MethodGet, "/api/v1/requests"},
		{http.MethodPost, "/api/v1/requests/" + uuid.NewString() + "/release"},
		{http.MethodPost, "/api/v1/guests/" + uuid.NewString() + "/scan"},
		{http.MethodGet, "/api/v1/outbound"},
		{http.MethodGet, "/api/v1/items/" + uuid.NewString() + "/movements"},
	}
	for _, p := range paths {
		if resp := serve(handler, p.method, p.path, employee); resp.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403 got %d", p.method, p.path, resp.Code)
		}
	}
}

func TestStaffCanReadOutbound(t *testing.T) {
	handler, cfg := newTestRouter(t, nil)
	admin := bearer(t, cfg, enums.RoleAdmin)

	if resp := serve(handler, http.MethodGet, "/api/v1/outbound", admin); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp := serve(handler, http.MethodGet, "/api/v1/outbound/"+uuid.NewString(), admin); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestEmployeeRoutesReachHandlers(t *testing.T) {
	handler, cfg := newTestRouter(t, nil)
	employee := bearer(t, cfg, enums.RoleEmployee)

	// the cart service is not wired in this router, so reaching the handler
	// surfaces as 500 rather than 401/403/404/405.
	if resp := serve(handler, http.MethodGet, "/api/v1/cart", employee); resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected handler to run, got %d", resp.Code)
	}
	if resp := serve(handler, http.MethodGet, "/api/v1/items/by-code/X123", employee); resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected handler to run, got %d", resp.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SeptianAdiraharja/Inventory/pkg/auth"
	"github.com/SeptianAdiraharja/Inventory/pkg/config"
	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
	"github.com/google/uuid"
)

func testJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsForeignIssuer(t *testing.T) {
	foreign := testJWT()
	foreign.Issuer = "someone-else"
	token := mintTestToken(t, foreign, uuid.New(), enums.RoleAdmin)

	handler := Auth(testJWT(), nil)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	cfg := testJWT()
	userID := uuid.New()
	token := mintTestToken(t, cfg, userID, enums.RoleEmployee)

	var captured types.Actor
	var found bool
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, found = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !found || captured.ID != userID {
		t.Fatalf("expected actor %s in context, got %+v", userID, captured)
	}
	if captured.Role != enums.RoleEmployee {
		t.Fatalf("expected role employee got %s", captured.Role)
	}
}

func TestRequireStaff(t *testing.T) {
	cases := []struct {
		name   string
		actor  *types.Actor
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "employee", actor: &types.Actor{ID: uuid.New(), Role: enums.RoleEmployee}, status: http.StatusForbidden},
		{name: "admin", actor: &types.Actor{ID: uuid.New(), Role: enums.RoleAdmin}, status: http.StatusOK},
		{name: "super admin", actor: &types.Actor{ID: uuid.New(), Role: enums.RoleSuperAdmin}, status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tc.actor))
			}
			resp := httptest.NewRecorder()
			RequireStaff(nil)(okHandler()).ServeHTTP(resp, req)
			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, resp.Code)
			}
		})
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role enums.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{UserID: userID, Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kisumuhealth/frontdesk/internal/audit"
	"github.com/kisumuhealth/frontdesk/internal/staff"
)

func testAuthenticator(t *testing.T, secret string) (*staff.Authenticator, string) {
	t.Helper()
	store := staff.NewMemoryStore()
	auth := staff.NewAuthenticator(store, secret, time.Hour, nil)
	if _, err := store.Create(context.Background(), staff.NewAccount{
		Username:   "grace",
		Password:   "s3cret-pass",
		Role:       staff.RoleStaff,
		Department: "OPD",
	}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if secret == "" {
		return auth, ""
	}
	session, err := auth.Login(context.Background(), "grace", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return auth, session.Token
}

func TestStaffJWTMissingHeader(t *testing.T) {
	auth, _ := testAuthenticator(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/api/staff/appointments", nil)
	rec := httptest.NewRecorder()

	StaffJWT(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without a token")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestStaffJWTInvalidToken(t *testing.T) {
	auth, _ := testAuthenticator(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/api/staff/appointments", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()

	StaffJWT(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached with a garbage token")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestStaffJWTValidToken(t *testing.T) {
	auth, token := testAuthenticator(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/api/staff/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	called := false
	StaffJWT(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := StaffClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("no claims in context")
		}
		if claims.Username != "grace" || claims.Department != "OPD" {
			t.Errorf("claims = %+v", claims)
		}
		if actor := audit.ActorFromContext(r.Context()); actor != "grace" {
			t.Errorf("audit actor = %q", actor)
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStaffJWTQueryToken(t *testing.T) {
	auth, token := testAuthenticator(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/ws/dashboard?token="+token, nil)
	rec := httptest.NewRecorder()

	called := false
	StaffJWT(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler not called with query token")
	}
}

func TestStaffJWTAuthDisabled(t *testing.T) {
	auth, _ := testAuthenticator(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/staff/appointments", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()

	StaffJWT(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached with auth disabled")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "disabled") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

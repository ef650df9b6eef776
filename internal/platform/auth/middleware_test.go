package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var testJWT = JWTConfig{Secret: []byte("0123456789abcdef0123456789abcdef"), TTL: time.Hour}

func TestIssueAndValidateToken(t *testing.T) {
	token, err := IssueToken(testJWT, "STF123001", RoleDoctor, "BRN001", "Dr. Sharma")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotStaff string
	var gotRole Role
	h := JWTMiddleware(testJWT)(func(c echo.Context) error {
		gotStaff = StaffIDFromContext(c.Request().Context())
		gotRole = RoleFromContext(c.Request().Context())
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStaff != "STF123001" {
		t.Errorf("expected staff id STF123001, got %q", gotStaff)
	}
	if gotRole != RoleDoctor {
		t.Errorf("expected role doctor, got %q", gotRole)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	h := JWTMiddleware(testJWT)(func(c echo.Context) error { return nil })
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_BadToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	c := e.NewContext(req, httptest.NewRecorder())

	h := JWTMiddleware(testJWT)(func(c echo.Context) error { return nil })
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	token, err := IssueToken(JWTConfig{Secret: []byte("another-secret-another-secret-xx"), TTL: time.Hour},
		"STF1", RoleAdmin, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c := e.NewContext(req, httptest.NewRecorder())

	h := JWTMiddleware(testJWT)(func(c echo.Context) error { return nil })
	if err := h(c); err == nil {
		t.Error("expected error for token signed with wrong secret")
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token, err := IssueToken(JWTConfig{Secret: testJWT.Secret, TTL: -time.Minute},
		"STF1", RoleAdmin, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c := e.NewContext(req, httptest.NewRecorder())

	h := JWTMiddleware(testJWT)(func(c echo.Context) error { return nil })
	if err := h(c); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestDevAuthMiddleware_Defaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	var gotRole Role
	h := DevAuthMiddleware()(func(c echo.Context) error {
		gotRole = RoleFromContext(c.Request().Context())
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRole != RoleSuperadmin {
		t.Errorf("expected superadmin default, got %q", gotRole)
	}
}

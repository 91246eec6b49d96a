package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/identity"
)

func runAuth(t *testing.T, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(identity.NewJWT("secret"))(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	acct := domain.Account{ID: "c1", Role: domain.RoleClient, Name: "Ava"}
	signed, err := identity.NewJWT("secret").Issue(acct, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	called := false
	rec := runAuth(t, "Bearer "+signed, func(c echo.Context) error {
		called = true
		if Account(c) != acct {
			t.Fatalf("account not set: %+v", Account(c))
		}
		if identity.AccountFrom(c.Request().Context()) != acct {
			t.Fatalf("account not propagated to request context")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeaderIsGuest(t *testing.T) {
	called := false
	rec := runAuth(t, "", func(c echo.Context) error {
		called = true
		if !Account(c).IsGuest() {
			t.Fatalf("expected guest, got %+v", Account(c))
		}
		return c.NoContent(http.StatusOK)
	})

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("guest request should pass through, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	rec := runAuth(t, "Token abc", func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rec := runAuth(t, "Bearer not-a-token", func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

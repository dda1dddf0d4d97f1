package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-taskflow/pkg/jwt"
)

func runAuth(t *testing.T, manager *jwt.Manager, decorate func(*http.Request)) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen echo.Context
	handler := EchoAuth(manager)(func(c echo.Context) error {
		seen = c
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return rec, seen, err
}

func TestEchoAuth_ValidBearerToken(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour)
	userID := uuid.New()
	token, err := manager.GenerateAccessToken(userID, "alice@example.com", "Alice Smith")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rec, seen, err := runAuth(t, manager, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got, ok := UserID(seen)
	if !ok || got != userID {
		t.Errorf("user_id = %v ok=%v, want %v", got, ok, userID)
	}
}

func TestEchoAuth_CookieFallback(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour)
	userID := uuid.New()
	token, err := manager.GenerateAccessToken(userID, "bob@example.com", "Bob Jones")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rec, seen, err := runAuth(t, manager, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	})
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got, _ := UserID(seen); got != userID {
		t.Errorf("user_id = %v, want %v", got, userID)
	}
}

func TestEchoAuth_MissingToken(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour)

	_, _, err := runAuth(t, manager, nil)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", httpErr.Code)
	}
}

func TestEchoAuth_WrongSecretRejected(t *testing.T) {
	issuer := jwt.NewManager("other-secret", time.Hour)
	manager := jwt.NewManager("test-secret", time.Hour)

	token, err := issuer.GenerateAccessToken(uuid.New(), "eve@example.com", "Eve")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, _, err = runAuth(t, manager, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", httpErr.Code)
	}
}

func TestEchoAuth_ExpiredToken(t *testing.T) {
	manager := jwt.NewManager("test-secret", -time.Minute)
	token, err := manager.GenerateAccessToken(uuid.New(), "old@example.com", "Old")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, _, err = runAuth(t, manager, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", httpErr.Code)
	}
}

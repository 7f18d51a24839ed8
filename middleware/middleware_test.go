package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubAuth map[string]*models.User

func (s stubAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperror.Unauthenticated("Invalid or expired token")
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop(), false)
	return e
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthGates(t *testing.T) {
	auth := stubAuth{
		"customer": {Name: "Customer", Role: models.RoleUser},
		"admin":    {Name: "Admin", Role: models.RoleAdmin},
	}
	e := newTestEcho()
	ok := func(c echo.Context) error {
		u, _ := CurrentUser(c)
		return c.String(http.StatusOK, u.Name)
	}
	e.GET("/user", ok, Authenticated(auth))
	e.GET("/admin", ok, Authenticated(auth), AdminOnly)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"no header", "/user", "", http.StatusUnauthorized},
		{"wrong scheme", "/user", "Basic customer", http.StatusUnauthorized},
		{"unknown token", "/user", "Bearer nope", http.StatusUnauthorized},
		{"customer on user route", "/user", "Bearer customer", http.StatusOK},
		{"lowercase scheme", "/user", "bearer customer", http.StatusOK},
		{"anonymous on admin route", "/admin", "", http.StatusUnauthorized},
		{"customer on admin route", "/admin", "Bearer customer", http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, tt.path, tt.header)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	auth := stubAuth{"customer": {Name: "Customer"}}
	e := newTestEcho()
	e.GET("/checkout", func(c echo.Context) error {
		if u, ok := CurrentUser(c); ok {
			return c.String(http.StatusOK, u.Name)
		}
		return c.String(http.StatusOK, "guest")
	}, OptionalAuth(auth))

	assert.Equal(t, "Customer", serve(e, http.MethodGet, "/checkout", "Bearer customer").Body.String())
	assert.Equal(t, "guest", serve(e, http.MethodGet, "/checkout", "Bearer expired").Body.String())
	assert.Equal(t, "guest", serve(e, http.MethodGet, "/checkout", "").Body.String())
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		development bool
		status      int
		body        string
	}{
		{"app error", apperror.Conflict("Insufficient stock for Dress"), false, http.StatusConflict, `{"message":"Insufficient stock for Dress"}`},
		{"wrapped app error", errors.Join(errors.New("ctx"), apperror.NotFound("Order not found")), false, http.StatusNotFound, `{"message":"Order not found"}`},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed), false, http.StatusMethodNotAllowed, `{"message":"Method Not Allowed"}`},
		{"unknown hides detail", errors.New("socket closed"), false, http.StatusInternalServerError, `{"message":"Internal server error"}`},
		{"unknown in development", errors.New("socket closed"), true, http.StatusInternalServerError, `{"message":"Internal server error","error":"socket closed"}`},
		{"internal app error in development", apperror.Internal(errors.New("timeout"), "Failed to create order"), true, http.StatusInternalServerError, `{"message":"Failed to create order","error":"Failed to create order: timeout"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.HTTPErrorHandler = ErrorHandler(zap.NewNop(), tt.development)
			e.GET("/", func(echo.Context) error { return tt.err })

			rec := serve(e, http.MethodGet, "/", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := newTestEcho()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/api/orders/:id", func(echo.Context) error {
		return apperror.NotFound("Order not found")
	})

	rec := serve(e, http.MethodGet, "/api/orders/42?x=1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/orders/42", fields["path"])
	assert.Equal(t, "x=1", fields["query"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
}

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evacurves/storefront-backend-go/handlers"
	customMiddleware "github.com/evacurves/storefront-backend-go/middleware"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/evacurves/storefront-backend-go/repository"
	"github.com/evacurves/storefront-backend-go/repository/memory"
	"github.com/evacurves/storefront-backend-go/routes"
	"github.com/evacurves/storefront-backend-go/services"
	"github.com/evacurves/storefront-backend-go/utils"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testApp struct {
	e     *echo.Echo
	store *repository.Store
	users *services.UserService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := zap.NewNop()
	store := memory.New().Repositories()
	users := services.NewUserService(store, utils.NewTokenManager("test-secret", time.Hour), log)
	reviews := services.NewReviewService(store, log, nil)

	h := &handlers.Handler{
		Orders:     services.NewOrderService(store, log, nil, false),
		Catalog:    services.NewCatalogService(store, reviews, log),
		Reviews:    reviews,
		Categories: services.NewCategoryService(store, log),
		Users:      users,
		Settings:   services.NewSettingsService(store, nil, time.Minute, log),
		Heroes:     services.NewHeroService(store, nil, time.Minute, log),
		Ping:       store.Ping,
	}

	e := echo.New()
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = customMiddleware.ErrorHandler(log, false)
	routes.SetupRoutes(e, h, users, nil)

	return &testApp{e: e, store: store, users: users}
}

// signUp registers a user and returns a bearer token for it.
func (a *testApp) signUp(t *testing.T, email string, role models.Role) (*models.User, string) {
	t.Helper()
	ctx := context.Background()
	u, token, err := a.users.Register(ctx, "Test User", email, "secret1")
	require.NoError(t, err)
	if role == models.RoleAdmin {
		u.Role = models.RoleAdmin
		require.NoError(t, a.store.Users.Update(ctx, u))
	}
	return u, token
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) product(t *testing.T, name, description, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: description,
		Price:       models.NewMoney(decimal.RequireFromString(price)),
		Stock:       stock,
		Images:      []string{"/img/" + name + ".jpg"},
		CreatedAt:   time.Now(),
	}
	require.NoError(t, a.store.Products.Create(context.Background(), p))
	return p
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func orderBody(productID string, qty int) map[string]any {
	return map[string]any{
		"items": []map[string]any{{"product": productID, "quantity": qty}},
		"shippingAddress": map[string]string{
			"street": "1 Main St", "city": "Haifa", "zipCode": "31000", "country": "IL",
		},
		"customerInfo": map[string]string{
			"firstName": "Dana", "lastName": "Levi", "email": "dana@example.com", "mobile": "0500000000",
		},
		"paymentMethod": "card",
	}
}

func TestCreateOrder(t *testing.T) {
	app := newTestApp(t)
	p1 := app.product(t, "P1", "", "20.00", 5)

	rec := app.do(t, http.MethodPost, "/api/orders", orderBody(p1.ID.Hex(), 2), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Message string `json:"message"`
		Order   struct {
			OrderNumber string  `json:"orderNumber"`
			TotalAmount float64 `json:"totalAmount"`
			Status      string  `json:"status"`
		} `json:"order"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, 40.0, resp.Order.TotalAmount)
	assert.Contains(t, rec.Body.String(), `"totalAmount":40.00`)
	assert.Equal(t, "pending", resp.Order.Status)
	assert.True(t, strings.HasPrefix(resp.Order.OrderNumber, "ORD-"))

	got, err := app.store.Products.Get(context.Background(), p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	app := newTestApp(t)
	p1 := app.product(t, "P1", "", "20.00", 1)

	rec := app.do(t, http.MethodPost, "/api/orders", orderBody(p1.ID.Hex(), 2), "")
	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Contains(t, body["message"], "P1")

	got, err := app.store.Products.Get(context.Background(), p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	app := newTestApp(t)
	p := app.product(t, "P", "", "10.00", 5)

	missingCity := orderBody(p.ID.Hex(), 1)
	missingCity["shippingAddress"] = map[string]string{"street": "x", "zipCode": "1"}

	tests := []struct {
		name   string
		body   any
		status int
		msg    string
	}{
		{"malformed json", `{"items": [`, http.StatusBadRequest, "Invalid request body"},
		{"bad product id", orderBody("nope", 1), http.StatusBadRequest, "Invalid product ID"},
		{"unknown product", orderBody("5f1d7f3e9d3b2a0012345678", 1), http.StatusNotFound, "5f1d7f3e9d3b2a0012345678"},
		{"zero quantity", orderBody(p.ID.Hex(), 0), http.StatusBadRequest, "quantity"},
		{"missing city", missingCity, http.StatusBadRequest, "shippingAddress.city is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/api/orders", tt.body, "")
			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			decode(t, rec, &body)
			assert.Contains(t, body["message"], tt.msg)
		})
	}
}

func TestSignedInOrdersAreListed(t *testing.T) {
	app := newTestApp(t)
	p := app.product(t, "P", "", "10.00", 5)
	_, token := app.signUp(t, "buyer@example.com", models.RoleUser)

	body := orderBody(p.ID.Hex(), 1)
	body["customerInfo"] = map[string]string{"email": "elsewhere@example.com", "mobile": "1"}
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/orders", body, token).Code)
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/orders", orderBody(p.ID.Hex(), 1), "").Code)

	rec := app.do(t, http.MethodGet, "/api/orders/my-orders", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.Order
	decode(t, rec, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, "elsewhere@example.com", orders[0].CustomerInfo.Email)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/orders/my-orders", nil, "").Code)
}

func TestSearchProducts(t *testing.T) {
	app := newTestApp(t)
	app.product(t, "Linen Shirt", "Breathable", "30.00", 1)
	app.product(t, "Wrap Dress", "Wear it over a T-SHIRT", "45.00", 1)
	app.product(t, "Wide Trousers", "High waist", "50.00", 1)

	rec := app.do(t, http.MethodGet, "/api/products?search=shirt", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var products []models.Product
	decode(t, rec, &products)
	require.Len(t, products, 2)
	for _, p := range products {
		text := strings.ToLower(p.Name + " " + p.Description)
		assert.Contains(t, text, "shirt")
	}

	rec = app.do(t, http.MethodGet, "/api/products/search?query=trousers", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Wide Trousers", products[0].Name)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	app := newTestApp(t)
	p := app.product(t, "P", "", "10.00", 5)
	_, token := app.signUp(t, "customer@example.com", models.RoleUser)
	id := p.ID.Hex()
	review := "5f1d7f3e9d3b2a0012345678"

	adminRoutes := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/orders/all"},
		{http.MethodPut, "/api/orders/" + id + "/status"},
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/" + id},
		{http.MethodDelete, "/api/products/" + id},
		{http.MethodPut, "/api/products/" + id + "/related"},
		{http.MethodPut, "/api/products/featured/reorder"},
		{http.MethodGet, "/api/products/reviews/all"},
		{http.MethodPut, "/api/products/" + id + "/reviews/" + review + "/verify"},
		{http.MethodDelete, "/api/products/" + id + "/reviews/" + review},
		{http.MethodPut, "/api/settings"},
		{http.MethodPost, "/api/categories"},
		{http.MethodPut, "/api/categories/reorder"},
		{http.MethodPut, "/api/categories/" + id},
		{http.MethodDelete, "/api/categories/" + id},
		{http.MethodPost, "/api/hero"},
		{http.MethodPut, "/api/hero/" + id},
	}
	bodies := []any{
		nil,
		`{"status":"delivered","name":"x","price":1,"currency":"EUR"}`,
		`{not json`,
		map[string]any{"role": "admin", "isAdmin": true},
	}

	for _, r := range adminRoutes {
		for _, body := range bodies {
			rec := app.do(t, r.method, r.path, body, token)
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", r.method, r.path)
		}
		assert.Equal(t, http.StatusUnauthorized, app.do(t, r.method, r.path, nil, "").Code, "%s %s", r.method, r.path)
	}

	got, err := app.store.Products.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "P", got.Name)
}

func TestAdminCatalogFlow(t *testing.T) {
	app := newTestApp(t)
	_, admin := app.signUp(t, "admin@example.com", models.RoleAdmin)

	rec := app.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "Evening Wear"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var category models.Category
	decode(t, rec, &category)
	assert.Equal(t, "evening-wear", category.Slug)

	rec = app.do(t, http.MethodPost, "/api/products", map[string]any{
		"name":     "Satin Gown",
		"price":    120.5,
		"stock":    4,
		"category": map[string]string{"_id": category.ID.Hex(), "name": "Evening Wear"},
		"sizes":    []map[string]any{{"name": "L", "stock": 4}},
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product models.Product
	decode(t, rec, &product)
	require.NotNil(t, product.Category)
	assert.Equal(t, category.ID, product.Category.ID)
	assert.Equal(t, "120.50", product.Price.StringFixed(2))

	rec = app.do(t, http.MethodPost, "/api/products", map[string]any{"name": "Bad", "category": 42}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/products/"+product.ID.Hex(), map[string]any{"stock": 9, "category": ""}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &product)
	assert.Equal(t, 9, product.Stock)
	assert.Nil(t, product.Category)

	rec = app.do(t, http.MethodDelete, "/api/products/"+product.ID.Hex(), nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/products/"+product.ID.Hex(), nil, "").Code)
}

func TestReviewFlow(t *testing.T) {
	app := newTestApp(t)
	p := app.product(t, "Dress", "", "60.00", 2)
	_, customer := app.signUp(t, "customer@example.com", models.RoleUser)
	_, admin := app.signUp(t, "admin@example.com", models.RoleAdmin)
	path := "/api/products/" + p.ID.Hex() + "/reviews"

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, path, map[string]any{"rating": 5, "comment": "x"}, "").Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, path, map[string]any{"rating": 7, "comment": "x"}, customer).Code)

	var review models.Review
	for _, rating := range []int{5, 5, 5, 1} {
		rec := app.do(t, http.MethodPost, path, map[string]any{"rating": rating, "comment": "Fits well"}, customer)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &review)
	}
	assert.True(t, review.Verified)

	rec := app.do(t, http.MethodGet, "/api/products/"+p.ID.Hex(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var product models.Product
	decode(t, rec, &product)
	assert.Equal(t, 4.0, product.Rating)
	assert.Len(t, product.Reviews, 4)

	rec = app.do(t, http.MethodPost, path+"/"+review.ID.Hex()+"/helpful", nil, customer)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &review)
	assert.Equal(t, 1, review.Helpful)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, path+"/"+review.ID.Hex()+"/report", nil, customer).Code)

	rec = app.do(t, http.MethodGet, "/api/products/reviews/all", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.ModerationReview
	decode(t, rec, &all)
	assert.Len(t, all, 4)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, path+"/"+review.ID.Hex(), nil, admin).Code)
	got, err := app.store.Products.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Rating)
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Noa", "email": "noa@example.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = app.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Noa", "email": "NOA@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "noa@example.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, rec, &login)

	rec = app.do(t, http.MethodGet, "/api/auth/me", nil, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPatch, "/api/users/notifications", map[string]bool{"newArrivals": false}, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"preferences":{"orderUpdates":true,"newArrivals":false,"specialOffers":true}}`, rec.Body.String())

	rec = app.do(t, http.MethodPatch, "/api/users/password", map[string]string{
		"currentPassword": "secret1", "newPassword": "secret2",
	}, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, "/api/users/account", nil, login.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/auth/me", nil, login.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/auth/me", nil, "not-a-token").Code)
}

func TestSettingsAndCurrency(t *testing.T) {
	app := newTestApp(t)
	_, admin := app.signUp(t, "admin@example.com", models.RoleAdmin)

	rec := app.do(t, http.MethodGet, "/api/settings", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var settings models.Settings
	decode(t, rec, &settings)
	assert.Equal(t, "USD", settings.Currency)

	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPut, "/api/settings", map[string]string{"currency": "JPY"}, admin).Code)
	rec = app.do(t, http.MethodPut, "/api/settings", map[string]string{"currency": "EUR"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &settings)
	assert.Equal(t, "EUR", settings.Currency)

	rec = app.do(t, http.MethodGet, "/api/currency/convert?amount=100&from=USD&to=ILS", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"result":360.00`)

	for _, q := range []string{"amount=abc&to=EUR", "amount=NaN&to=EUR", "amount=Inf&to=EUR", "amount=1&to=XYZ"} {
		assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/currency/convert?"+q, nil, "").Code, q)
	}
}

func TestHeroAndHealth(t *testing.T) {
	app := newTestApp(t)
	_, admin := app.signUp(t, "admin@example.com", models.RoleAdmin)

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/hero/active", nil, "").Code)
	rec := app.do(t, http.MethodPost, "/api/hero", map[string]any{
		"title": "New Season", "image": "/hero.jpg", "isActive": true,
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/hero/active", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "New Season")

	rec = app.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestInvalidIDReturnsMessage(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/api/products/not-an-id", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid product ID"}`, rec.Body.String())
}

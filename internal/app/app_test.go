package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/cod-storefront/internal/cart"
	"github.com/wichananm65/cod-storefront/internal/config"
	"github.com/wichananm65/cod-storefront/internal/product"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Config{
		StoreBackend:      config.BackendMemory,
		OrderBackend:      config.BackendMemory,
		StoreTimeout:      time.Second,
		ShippingFee:       decimal.NewFromInt(50),
		JWTSecret:         "secret",
		AdminPasswordHash: string(hash),
		AdminTokenTTL:     time.Hour,
		CORSOrigins:       "*",
		StoreName:         "Test Store",
	}
	a, err := New(context.Background(), cfg, MemoryStores(DemoProducts(time.Now())))
	require.NoError(t, err)
	return a.Fiber()
}

func do(t *testing.T, app *fiber.App, method, path, session, token, body string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(cart.SessionHeader, session)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestStorefrontFlow(t *testing.T) {
	app := newTestApp(t)

	var products []product.Product
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/v1/products?sort=price-low", "", "", "", &products))
	require.Len(t, products, 6)
	assert.Equal(t, "Handmade Soap Collection", products[0].Title)

	var categories []string
	do(t, app, http.MethodGet, "/api/v1/categories", "", "", "", &categories)
	assert.Equal(t, "all", categories[0])
	assert.Len(t, categories, 7)

	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodPost, "/api/v1/cart/items", "s1", "", `{"productId":"2","quantity":2}`, nil))

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Totals struct {
			Total json.Number `json:"total"`
		} `json:"totals"`
	}
	require.Equal(t, fiber.StatusCreated, do(t, app, http.MethodPost, "/api/v1/orders", "s1", "", `{"name":"Somchai","phone":"0812345678","address":"12 Moo 3","city":"Chiang Mai"}`, &created))
	assert.Equal(t, "requested", created.Status)
	assert.Equal(t, "362", created.Totals.Total.String())

	var cartView struct {
		ItemCount int `json:"itemCount"`
	}
	do(t, app, http.MethodGet, "/api/v1/cart", "s1", "", "", &cartView)
	assert.Zero(t, cartView.ItemCount)

	var login struct {
		Token string `json:"token"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodPost, "/api/v1/admin/login", "", "", `{"password":"admin123"}`, &login))

	var moved struct {
		Status string `json:"status"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodPost, "/api/v1/admin/orders/"+created.ID+"/transition", "", login.Token, `{"action":"dispatch"}`, &moved))
	assert.Equal(t, "shipping", moved.Status)

	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, http.MethodPut, "/api/v1/admin/settings", "", "", `{}`, nil))
}

func TestUnknownRouteGetsNotice(t *testing.T) {
	app := newTestApp(t)

	var body struct {
		Notice struct {
			Kind string `json:"kind"`
		} `json:"notice"`
	}
	assert.Equal(t, fiber.StatusNotFound, do(t, app, http.MethodGet, "/api/v1/nowhere", "", "", "", &body))
	assert.Equal(t, "request", body.Notice.Kind)
}

func TestSeedIfEmpty(t *testing.T) {
	repo := product.NewInMemoryRepository(nil)

	seeded, err := SeedIfEmpty(context.Background(), repo, time.Now())
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = SeedIfEmpty(context.Background(), repo, time.Now())
	require.NoError(t, err)
	assert.False(t, seeded)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "6", all[0].ID)
}

package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/cod-storefront/internal/product"
)

func makeAppWithCatalogHandler() *fiber.App {
	app := fiber.New()
	NewHandler(product.NewInMemoryRepository(sampleCatalog()), time.Second).RegisterPublicRoutes(app)
	return app
}

func TestGetProducts(t *testing.T) {
	app := makeAppWithCatalogHandler()

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantIDs    []string
	}{
		{"default is source order", "/api/v1/products", fiber.StatusOK, []string{"5", "4", "2", "3", "1"}},
		{"search and sort", "/api/v1/products?q=hand&sort=price-asc", fiber.StatusOK, []string{"5", "1"}},
		{"category filter", "/api/v1/products?category=Jewelry", fiber.StatusOK, []string{"2"}},
		{"unknown sort", "/api/v1/products?sort=cheapest", fiber.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := app.Test(httptest.NewRequest(http.MethodGet, tt.url, nil))
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, res.StatusCode)
			if tt.wantIDs == nil {
				return
			}
			var got []product.Product
			require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
			assert.Equal(t, tt.wantIDs, ids(got))
		})
	}
}

func TestGetProductAndCategories(t *testing.T) {
	app := makeAppWithCatalogHandler()

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products/3", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products/404", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)

	res, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	require.NoError(t, err)
	var cats []string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&cats))
	assert.Equal(t, []string{"all", "Home Décor", "Kitchen", "Jewelry", "Stationery"}, cats)
}

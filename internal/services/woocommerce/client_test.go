package woocommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
)

func testClient(url string) *Client {
	return NewClient(url, "ck_test", "cs_test", logger.New("error"))
}

func TestCreateCategoryDecodesConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    "term_exists",
			"message": "A term with the provided slug already exists.",
			"data":    map[string]interface{}{"status": 400, "resource_id": 42},
		})
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateCategory(context.Background(), Category{Name: "Bikes", Slug: "wcapi_cat_bikes"})
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CodeTermExists, conflict.Code)
	assert.Equal(t, 42, conflict.ResourceID)
}

func TestCreateProductDecodesSKUConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    "product_invalid_sku",
			"message": "Invalid or duplicated SKU.",
			"data":    map[string]interface{}{"status": 400, "resource_id": 7},
		})
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateProduct(context.Background(), Product{Name: "Tee", Slug: "wcapi_prod_tee"})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CodeInvalidSKU, conflict.Code)
	assert.Equal(t, 7, conflict.ResourceID)
}

func TestOtherFailuresAreAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateCategory(context.Background(), Category{Name: "Bikes"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestGetCategoryNotFoundReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"code": "woocommerce_rest_term_invalid"})
	}))
	defer server.Close()

	category, err := testClient(server.URL).GetCategory(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, category)
}

func TestFindProductBySlug(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("slug") == "wcapi_prod_tee" {
			json.NewEncoder(w).Encode([]Product{{ID: 12, Slug: "wcapi_prod_tee"}})
			return
		}
		json.NewEncoder(w).Encode([]Product{})
	}))
	defer server.Close()

	client := testClient(server.URL)

	product, err := client.FindProductBySlug(context.Background(), "wcapi_prod_tee")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, 12, product.ID)

	missing, err := client.FindProductBySlug(context.Background(), "wcapi_prod_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRequestsCarryBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)
		json.NewEncoder(w).Encode([]Attribute{})
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListAttributes(context.Background())
	require.NoError(t, err)
}

func TestProductImagesForceExtension(t *testing.T) {
	images := ProductImages("City Bike", []string{"https://cdn.example.com/bike"})
	require.Len(t, images, 1)
	assert.Equal(t, "https://cdn.example.com/bike.png", images[0].Src)
	assert.Equal(t, "City Bike Image 1", images[0].Name)
	assert.Equal(t, "City Bike", images[0].Alt)

	assert.Nil(t, ProductImages("Bare", nil))
}

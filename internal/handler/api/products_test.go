// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/testutil"
)

func newTestAPI(t *testing.T) (http.Handler, *service.Catalog) {
	t.Helper()

	db := testutil.TestMemoryDB(t)
	catalog := service.NewCatalog(db, nil, 0)
	h := NewHandler(catalog)

	r := chi.NewRouter()
	r.Get("/products", h.ListProducts)
	r.Get("/products/{id:[0-9]+}", h.GetProduct)
	r.NotFound(h.NotFound)
	return r, catalog
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestListProducts(t *testing.T) {
	h, catalog := newTestAPI(t)
	ctx := context.Background()

	w := serve(h, "/products")
	assertStatusCode(t, w, http.StatusOK)
	assert.JSONEq(t, `{"products":[]}`, w.Body.String())

	first, err := catalog.Create(ctx, model.NewProduct{Name: "Premium Headphones", Price: 2999, ImageURL: "https://example.com/h.jpg"})
	require.NoError(t, err)
	_, err = catalog.Create(ctx, model.NewProduct{Name: "Smart Watch", Price: 3499, ImageURL: "https://example.com/w.jpg"})
	require.NoError(t, err)

	w = serve(h, "/products")
	assertStatusCode(t, w, http.StatusOK)

	var resp ProductListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 2)
	assert.Equal(t, ProductResponse{
		ID:       first.ID,
		Name:     "Premium Headphones",
		Price:    2999,
		ImageURL: "https://example.com/h.jpg",
	}, resp.Products[0])
	assert.Equal(t, "Smart Watch", resp.Products[1].Name)
}

func TestListProducts_FieldNames(t *testing.T) {
	h, catalog := newTestAPI(t)

	_, err := catalog.Create(context.Background(), model.NewProduct{Name: "Speaker", Price: 1499, ImageURL: "/s.png"})
	require.NoError(t, err)

	var raw struct {
		Products []map[string]any `json:"products"`
	}
	require.NoError(t, json.Unmarshal(serve(h, "/products").Body.Bytes(), &raw))
	require.Len(t, raw.Products, 1)

	keys := make([]string, 0, len(raw.Products[0]))
	for k := range raw.Products[0] {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"id", "name", "price", "image_url"}, keys)
}

func TestGetProduct(t *testing.T) {
	h, catalog := newTestAPI(t)

	p, err := catalog.Create(context.Background(), model.NewProduct{Name: "Sunglasses", Price: 1899, ImageURL: "/g.png"})
	require.NoError(t, err)

	w := serve(h, "/products/"+strconv.FormatInt(p.ID, 10))
	assertStatusCode(t, w, http.StatusOK)

	var resp ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, p.ID, resp.ID)
	assert.Equal(t, "Sunglasses", resp.Name)
}

func TestGetProduct_NotFound(t *testing.T) {
	h, _ := newTestAPI(t)

	tests := []struct {
		name   string
		target string
	}{
		{"missing id", "/products/999"},
		{"non-numeric id", "/products/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h, tt.target)
			assertStatusCode(t, w, http.StatusNotFound)
			assertErrorResponse(t, w, "not_found")
		})
	}
}

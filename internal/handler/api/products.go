// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/oshop-go/internal/handler"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/service"
)

// ProductResponse is the public JSON shape of a product.
type ProductResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}

// ProductListResponse wraps the product listing.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
}

func productToResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}

// ListProducts handles GET /api/v1/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		slog.Error("api: failed to list products", "error", err)
		WriteInternalError(w, "Failed to retrieve products")
		return
	}

	resp := ProductListResponse{Products: make([]ProductResponse, len(products))}
	for i, p := range products {
		resp.Products[i] = productToResponse(p)
	}

	WriteJSON(w, http.StatusOK, resp)
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteNotFound(w, "Product not found")
		return
	}

	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			WriteNotFound(w, "Product not found")
			return
		}
		slog.Error("api: failed to get product", "error", err, "product_id", id)
		WriteInternalError(w, "Failed to retrieve product")
		return
	}

	WriteJSON(w, http.StatusOK, productToResponse(product))
}

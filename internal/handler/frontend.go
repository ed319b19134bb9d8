// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides HTTP handlers for the storefront, admin area,
// authentication and health checks.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
)

const templateNotFound = "public/not_found"

// StorefrontData is the template data for the public product listing.
type StorefrontData struct {
	Products []model.Product
}

// NotFoundData is the template data for the 404 page.
type NotFoundData struct {
	Message string
}

// FrontendHandler handles public routes.
type FrontendHandler struct {
	catalog  *service.Catalog
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(catalog *service.Catalog, renderer *render.Renderer, logger *slog.Logger) *FrontendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontendHandler{
		catalog:  catalog,
		renderer: renderer,
		logger:   logger,
	}
}

// Storefront lists every product in insertion order.
func (h *FrontendHandler) Storefront(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, templateStorefront, render.TemplateData{
		Title: "Shop",
		Data:  StorefrontData{Products: products},
	})
}

// NotFound renders the 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w, r, h.renderer, "The page you are looking for does not exist.")
}

func renderNotFound(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, message string) {
	renderPage(w, r, renderer, http.StatusNotFound, templateNotFound, render.TemplateData{
		Title: "Not Found",
		Data:  NotFoundData{Message: message},
	})
}

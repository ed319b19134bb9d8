// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/store"
)

// dashboardEventLimit caps the activity list on the dashboard.
const dashboardEventLimit = 10

// ProductsHandler handles the admin product routes.
type ProductsHandler struct {
	catalog      *service.Catalog
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(db *sql.DB, catalog *service.Catalog, renderer *render.Renderer) *ProductsHandler {
	return &ProductsHandler{
		catalog:      catalog,
		renderer:     renderer,
		eventService: service.NewEventService(db),
	}
}

// DashboardData is the template data for the admin dashboard.
type DashboardData struct {
	Products []model.Product
	Events   []store.Event
}

// ProductFormValues holds the raw submitted form values for re-rendering.
type ProductFormValues struct {
	Name     string
	Price    string
	ImageURL string
}

// ProductFormData is the template data for the add-product form.
type ProductFormData struct {
	Values ProductFormValues
	Errors model.ValidationErrors
}

// Dashboard lists every product with delete controls.
func (h *ProductsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list products", "error", err)
		return
	}

	events, err := h.eventService.RecentEvents(r.Context(), dashboardEventLimit)
	if err != nil {
		slog.Error("failed to load recent events", "error", err)
		events = nil
	}

	renderPage(w, r, h.renderer, http.StatusOK, templateDashboard, render.TemplateData{
		Title: "Admin Dashboard",
		Data:  DashboardData{Products: products, Events: events},
	})
}

// NewForm renders the add-product form.
func (h *ProductsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, ProductFormData{})
}

// Create validates the submitted product and stores it.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminAdd) {
		return
	}

	values := ProductFormValues{
		Name:     r.PostFormValue(model.FieldName),
		Price:    r.PostFormValue(model.FieldPrice),
		ImageURL: r.PostFormValue(model.FieldImageURL),
	}

	input, verrs := model.ParseProductInput(values.Name, values.Price, values.ImageURL)
	if len(verrs) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, ProductFormData{Values: values, Errors: verrs})
		return
	}

	product, err := h.catalog.Create(r.Context(), input)
	if err != nil {
		logAndInternalError(w, "failed to create product", "error", err, "name", input.Name)
		return
	}

	slog.Info("product created", "product_id", product.ID, "name", product.Name)
	_ = h.eventService.LogCatalogEvent(r.Context(), model.EventLevelInfo, "Product created",
		middleware.GetClientIP(r), r.URL.RequestURI(),
		map[string]any{"product_id": product.ID, "name": product.Name, "price": product.Price})

	flashSuccess(w, r, h.renderer, redirectAdmin, "Product \""+product.Name+"\" added.")
}

// Delete removes the product whose id is in the path.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		renderNotFound(w, r, h.renderer, "Product not found")
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			renderNotFound(w, r, h.renderer, "Product not found")
			return
		}
		logAndInternalError(w, "failed to delete product", "error", err, "product_id", id)
		return
	}

	slog.Info("product deleted", "product_id", id)
	_ = h.eventService.LogCatalogEvent(r.Context(), model.EventLevelInfo, "Product deleted",
		middleware.GetClientIP(r), r.URL.RequestURI(),
		map[string]any{"product_id": id})

	flashSuccess(w, r, h.renderer, redirectAdmin, "Product deleted.")
}

func (h *ProductsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data ProductFormData) {
	renderPage(w, r, h.renderer, status, templateAddProduct, render.TemplateData{
		Title: "Add Product",
		Data:  data,
	})
}

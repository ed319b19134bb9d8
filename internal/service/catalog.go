// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/oshop-go/internal/cache"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/store"
)

// ErrProductNotFound is returned when no product has the requested id.
var ErrProductNotFound = errors.New("product not found")

const catalogCacheKey = "catalog:products"

// Catalog reads and modifies the product table. The full listing is
// cached and invalidated on every write.
type Catalog struct {
	queries  *store.Queries
	products *cache.TypedCache[[]model.Product]
}

// NewCatalog creates a Catalog. A nil cache disables listing caching.
func NewCatalog(db *sql.DB, c cache.Cache, ttl time.Duration) *Catalog {
	cat := &Catalog{queries: store.New(db)}
	if c != nil {
		cat.products = cache.NewTypedCache[[]model.Product](c, ttl)
	}
	return cat
}

// List returns every product in insertion order.
func (c *Catalog) List(ctx context.Context) ([]model.Product, error) {
	if c.products == nil {
		return c.load(ctx)
	}
	return c.products.GetOrSet(ctx, catalogCacheKey, func() ([]model.Product, error) {
		return c.load(ctx)
	})
}

func (c *Catalog) load(ctx context.Context) ([]model.Product, error) {
	rows, err := c.queries.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products := make([]model.Product, len(rows))
	for i, r := range rows {
		products[i] = fromStore(r)
	}
	return products, nil
}

// Get returns a single product or ErrProductNotFound.
func (c *Catalog) Get(ctx context.Context, id int64) (model.Product, error) {
	row, err := c.queries.GetProduct(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("getting product %d: %w", id, err)
	}
	return fromStore(row), nil
}

// Create inserts a validated product and returns it with its new id.
func (c *Catalog) Create(ctx context.Context, p model.NewProduct) (model.Product, error) {
	row, err := c.queries.CreateProduct(ctx, store.CreateProductParams{
		Name:      p.Name,
		Price:     p.Price,
		ImageUrl:  p.ImageURL,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("creating product: %w", err)
	}

	c.Invalidate(ctx)
	return fromStore(row), nil
}

// Delete removes a product by id. It returns ErrProductNotFound and leaves
// the catalog untouched when the id does not exist.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	n, err := c.queries.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if n == 0 {
		return ErrProductNotFound
	}

	c.Invalidate(ctx)
	return nil
}

// Count returns the number of products.
func (c *Catalog) Count(ctx context.Context) (int64, error) {
	n, err := c.queries.CountProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

// Invalidate drops the cached listing.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.products == nil {
		return
	}
	if err := c.products.Delete(ctx, catalogCacheKey); err != nil {
		slog.Warn("failed to invalidate catalog cache", "error", err)
	}
}

func fromStore(p store.Product) model.Product {
	return model.Product{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageUrl,
		CreatedAt: p.CreatedAt,
	}
}

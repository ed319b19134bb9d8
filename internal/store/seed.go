// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// SeedProducts is the initial catalog inserted into an empty products table.
var SeedProducts = []CreateProductParams{
	{
		Name:     "Premium Headphones",
		Price:    2999.00,
		ImageUrl: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400&h=300&fit=crop",
	},
	{
		Name:     "Smart Watch",
		Price:    3499.00,
		ImageUrl: "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400&h=300&fit=crop",
	},
	{
		Name:     "Designer Sunglasses",
		Price:    1899.00,
		ImageUrl: "https://images.unsplash.com/photo-1572635196237-14b3f281503f?w=400&h=300&fit=crop",
	},
	{
		Name:     "Portable Speaker",
		Price:    1499.00,
		ImageUrl: "https://images.unsplash.com/photo-1608043152269-423dbba4e7e1?w=400&h=300&fit=crop",
	},
}

// Seed inserts SeedProducts when the catalog is empty.
// It returns the number of products inserted.
func Seed(ctx context.Context, db *sql.DB, doSeed bool) (int, error) {
	if !doSeed {
		slog.Info("seeding disabled, skipping")
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	queries := New(db).WithTx(tx)

	count, err := queries.CountProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	if count > 0 {
		slog.Info("catalog already has products, skipping seed", "count", count)
		return 0, nil
	}

	now := time.Now().UTC()
	for _, p := range SeedProducts {
		p.CreatedAt = now
		if _, err := queries.CreateProduct(ctx, p); err != nil {
			return 0, fmt.Errorf("creating seed product %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}

	slog.Info("seed products inserted", "count", len(SeedProducts))
	return len(SeedProducts), nil
}

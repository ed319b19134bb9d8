// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the catalog domain types and the validation
// applied to admin form input.
package model

import (
	"html"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Field limits match the products table in the original schema.
const (
	MaxNameLength     = 100
	MaxImageURLLength = 500
)

// Form field names.
const (
	FieldName     = "name"
	FieldPrice    = "price"
	FieldImageURL = "image_url"
)

// Product is the public representation of a catalog entry.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`

	CreatedAt time.Time `json:"created_at"`
}

// NewProduct holds validated values for a product about to be created.
type NewProduct struct {
	Name     string
	Price    float64
	ImageURL string
}

// ValidationErrors maps form field names to human-readable messages.
type ValidationErrors map[string]string

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

var namePolicy = bluemonday.StrictPolicy()

// ParseProductInput validates raw form values and returns a NewProduct.
// The returned ValidationErrors is nil when the input is valid.
func ParseProductInput(name, price, imageURL string) (NewProduct, ValidationErrors) {
	errs := ValidationErrors{}
	var p NewProduct

	// StrictPolicy entity-encodes what it keeps; templates escape on output.
	p.Name = strings.TrimSpace(html.UnescapeString(namePolicy.Sanitize(name)))
	switch {
	case p.Name == "":
		errs[FieldName] = "Name is required"
	case utf8.RuneCountInString(p.Name) > MaxNameLength:
		errs[FieldName] = "Name must be at most " + strconv.Itoa(MaxNameLength) + " characters"
	}

	price = strings.TrimSpace(price)
	if price == "" {
		errs[FieldPrice] = "Price is required"
	} else if v, err := strconv.ParseFloat(price, 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs[FieldPrice] = "Price must be a number"
	} else if v < 0 {
		errs[FieldPrice] = "Price must not be negative"
	} else {
		p.Price = v
	}

	p.ImageURL = strings.TrimSpace(imageURL)
	if msg := validateImageURL(p.ImageURL); msg != "" {
		errs[FieldImageURL] = msg
	}

	if len(errs) > 0 {
		return NewProduct{}, errs
	}
	return p, nil
}

// validateImageURL accepts absolute http(s) URLs and root-relative paths.
func validateImageURL(raw string) string {
	if raw == "" {
		return "Image URL is required"
	}
	if len(raw) > MaxImageURLLength {
		return "Image URL must be at most " + strconv.Itoa(MaxImageURLLength) + " characters"
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "Image URL is not a valid URL"
	}

	if u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/") && !strings.HasPrefix(raw, "//") {
		return ""
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return ""
	}
	return "Image URL must start with http://, https:// or /"
}

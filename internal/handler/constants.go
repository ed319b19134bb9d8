// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the storefront path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteAdmin is the admin dashboard route.
	RouteAdmin = "/admin"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteStatic is the embedded static assets prefix.
	RouteStatic = "/static"

	// RouteSuffixAdd is the add-product suffix under /admin.
	RouteSuffixAdd = "/add"
	// RouteSuffixDelete is the delete-product suffix under /admin. Only
	// integer ids match.
	RouteSuffixDelete = "/delete/{id:[0-9]+}"

	// RouteAPIPrefix is the JSON API mount point.
	RouteAPIPrefix = "/api/v1"
	// RouteAPIProducts is the product list route under the API prefix.
	RouteAPIProducts = "/products"
	// RouteAPIProductsID is the single product route under the API prefix.
	RouteAPIProductsID = RouteAPIProducts + "/{id:[0-9]+}"
)

const (
	redirectAdmin    = RouteAdmin
	redirectAdminAdd = RouteAdmin + RouteSuffixAdd
	redirectLogin    = RouteLogin
)

// Page template names.
const (
	templateStorefront = "public/index"
	templateLogin      = "auth/login"
	templateDashboard  = "admin/dashboard"
	templateAddProduct = "admin/add_product"
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"

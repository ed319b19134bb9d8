// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/olegiv/oshop-go/internal/auth"
	"github.com/olegiv/oshop-go/internal/cache"
	"github.com/olegiv/oshop-go/internal/config"
	"github.com/olegiv/oshop-go/internal/handler"
	"github.com/olegiv/oshop-go/internal/handler/api"
	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/version"
	"github.com/olegiv/oshop-go/web"
)

// routerDeps carries everything the HTTP layer needs.
type routerDeps struct {
	DB              *sql.DB
	Config          *config.Config
	Logger          *slog.Logger
	Sessions        *scs.SessionManager
	Renderer        *render.Renderer
	Credentials     *auth.Credentials
	Catalog         *service.Catalog
	Cache           cache.Cache
	LoginProtection *middleware.LoginProtection
	Version         version.Info
}

// newRouter builds the chi router with the full middleware stack.
func newRouter(d routerDeps) (http.Handler, error) {
	isDev := d.Config.IsDevelopment()

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))                    // Gzip compression with level 5
	r.Use(chimw.GetHead)                        // Handle HEAD requests for uptime monitoring
	r.Use(middleware.Timeout(30 * time.Second)) // 30 second request timeout
	r.Use(middleware.StripTrailingSlash)        // Redirect /path/ to /path (301)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(isDev)))
	r.Use(middleware.RequestPath)
	r.Use(d.Sessions.LoadAndSave)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(d.Config.SessionSecret), isDev, d.Config.ServerAddr()))

	// 10 requests per second with burst of 20 per IP
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
	apiRateLimiter := middleware.NewGlobalRateLimiter(100.0, 200)

	authHandler := handler.NewAuthHandler(d.DB, d.Credentials, d.Renderer, d.Sessions, d.LoginProtection)
	productsHandler := handler.NewProductsHandler(d.DB, d.Catalog, d.Renderer)
	frontendHandler := handler.NewFrontendHandler(d.Catalog, d.Renderer, d.Logger)
	healthHandler := handler.NewHealthHandler(d.DB, d.Catalog, d.Cache, d.Sessions, d.Version)
	apiHandler := api.NewHandler(d.Catalog)

	// Health check routes (public, returns additional details for admins)
	r.Get(handler.RouteHealth, healthHandler.Health)
	r.Get(handler.RouteHealth+"/live", healthHandler.Liveness)
	r.Get(handler.RouteHealth+"/ready", healthHandler.Readiness)

	// Storefront
	r.Get(handler.RouteRoot, frontendHandler.Storefront)

	// Auth routes (public, with CSRF and rate limiting)
	r.Group(func(r chi.Router) {
		r.Use(publicRateLimiter.HTMLMiddleware())
		r.Use(csrfMiddleware)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(d.LoginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.With(middleware.SameOriginOnly).Get(handler.RouteLogout, authHandler.Logout)
	})

	// Admin routes (require the admin session marker)
	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireAdmin(d.Sessions))
		r.Get(handler.RouteRoot, productsHandler.Dashboard)
		r.Get(handler.RouteSuffixAdd, productsHandler.NewForm)
		r.Post(handler.RouteSuffixAdd, productsHandler.Create)
		r.Post(handler.RouteSuffixDelete, productsHandler.Delete)
	})

	// Read-only JSON API
	r.Route(handler.RouteAPIPrefix, func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Use(apiRateLimiter.Middleware())
		r.Get(handler.RouteAPIProducts, apiHandler.ListProducts)
		r.Get(handler.RouteAPIProductsID, apiHandler.GetProduct)
		r.NotFound(apiHandler.NotFound)
	})

	// Embedded static assets
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return nil, fmt.Errorf("getting static fs: %w", err)
	}
	fileServer := http.StripPrefix(handler.RouteStatic+"/", http.FileServer(http.FS(staticFS)))
	r.Get(handler.RouteStatic+"/*", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, req)
	})

	r.NotFound(frontendHandler.NotFound)

	return r, nil
}

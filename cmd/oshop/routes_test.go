// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oshop-go/internal/auth"
	"github.com/olegiv/oshop-go/internal/cache"
	"github.com/olegiv/oshop-go/internal/config"
	"github.com/olegiv/oshop-go/internal/handler"
	"github.com/olegiv/oshop-go/internal/handler/api"
	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/session"
	"github.com/olegiv/oshop-go/internal/store"
	"github.com/olegiv/oshop-go/internal/testutil"
	"github.com/olegiv/oshop-go/internal/version"
	"github.com/olegiv/oshop-go/web"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "hunter2-but-longer"
)

type testApp struct {
	server  *httptest.Server
	client  *http.Client
	catalog *service.Catalog
}

// newTestApp starts the full router on a seeded, file-backed database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	_, err := store.Seed(context.Background(), db, true)
	require.NoError(t, err)

	cfg := &config.Config{
		SessionSecret: "test-session-secret-0123456789abcdef",
		ServerHost:    "localhost",
		ServerPort:    5000,
		Env:           "development",
	}

	creds, err := auth.NewCredentials(testAdminUser, testAdminPassword, "")
	require.NoError(t, err)

	sm := session.New(db, true)

	mem := cache.NewMemoryCache(time.Minute, 0)
	t.Cleanup(func() { _ = mem.Close() })
	catalog := service.NewCatalog(db, mem, time.Minute)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sm})
	require.NoError(t, err)

	lp := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	t.Cleanup(lp.Stop)

	router, err := newRouter(routerDeps{
		DB:              db,
		Config:          cfg,
		Logger:          testutil.TestLogger(),
		Sessions:        sm,
		Renderer:        renderer,
		Credentials:     creds,
		Catalog:         catalog,
		Cache:           mem,
		LoginProtection: lp,
		Version:         version.Info{Version: "test"},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{server: srv, client: client, catalog: catalog}
}

func (a *testApp) do(t *testing.T, method, path string, form url.Values, headers map[string]string) (*http.Response, string) {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, a.server.URL+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	return a.do(t, http.MethodGet, path, nil, nil)
}

func (a *testApp) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	return a.do(t, http.MethodPost, path, form, nil)
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	resp, _ := a.post(t, handler.RouteLogin, url.Values{"username": {testAdminUser}, "password": {testAdminPassword}})
	requireRedirect(t, resp, handler.RouteAdmin)
}

func (a *testApp) count(t *testing.T) int64 {
	t.Helper()
	n, err := a.catalog.Count(context.Background())
	require.NoError(t, err)
	return n
}

func requireRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, location, resp.Header.Get("Location"))
}

func TestRouter_StorefrontSeeded(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, handler.RouteRoot)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	for _, p := range store.SeedProducts {
		assert.Contains(t, body, p.Name)
	}
	assert.Contains(t, body, "$2,999.00")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
}

func TestRouter_AdminRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.get(t, handler.RouteAdmin)
	requireRedirect(t, resp, handler.RouteLogin)

	resp, _ = app.get(t, "/admin/add")
	requireRedirect(t, resp, handler.RouteLogin)

	resp, _ = app.post(t, "/admin/add", url.Values{"name": {"Sneaky"}, "price": {"1"}, "image_url": {"/x.png"}})
	requireRedirect(t, resp, handler.RouteLogin)

	resp, _ = app.post(t, "/admin/delete/1", url.Values{})
	requireRedirect(t, resp, handler.RouteLogin)

	assert.Equal(t, int64(len(store.SeedProducts)), app.count(t))
}

func TestRouter_LoginFlow(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, handler.RouteLogin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/login"`)

	resp, body = app.post(t, handler.RouteLogin, url.Values{"username": {testAdminUser}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, handler.MsgInvalidCredentials)

	resp, _ = app.get(t, handler.RouteAdmin)
	requireRedirect(t, resp, handler.RouteLogin)

	app.login(t)

	resp, body = app.get(t, handler.RouteAdmin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Premium Headphones")
	assert.Contains(t, body, "Welcome back, admin!")
}

func TestRouter_AddAndDeleteProduct(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	// Warm the catalog cache so the write has to invalidate it.
	_, _ = app.get(t, handler.RouteRoot)

	resp, _ := app.post(t, "/admin/add", url.Values{
		"name":      {"Desk Lamp"},
		"price":     {"49.90"},
		"image_url": {"https://example.com/lamp.jpg"},
	})
	requireRedirect(t, resp, handler.RouteAdmin)
	assert.Equal(t, int64(len(store.SeedProducts)+1), app.count(t))

	_, body := app.get(t, handler.RouteRoot)
	assert.Contains(t, body, "Desk Lamp")
	assert.Contains(t, body, "$49.90")

	products, err := app.catalog.List(context.Background())
	require.NoError(t, err)
	added := products[len(products)-1]
	require.Equal(t, "Desk Lamp", added.Name)

	resp, _ = app.post(t, "/admin/delete/"+strconv.FormatInt(added.ID, 10), url.Values{})
	requireRedirect(t, resp, handler.RouteAdmin)
	assert.Equal(t, int64(len(store.SeedProducts)), app.count(t))

	_, body = app.get(t, handler.RouteRoot)
	assert.NotContains(t, body, "Desk Lamp")

	// Deleting it again is a 404 and leaves the catalog alone.
	resp, body = app.post(t, "/admin/delete/"+strconv.FormatInt(added.ID, 10), url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Product not found")
	assert.Equal(t, int64(len(store.SeedProducts)), app.count(t))
}

func TestRouter_AddProductInvalid(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, body := app.post(t, "/admin/add", url.Values{"name": {"Desk"}, "price": {"cheap"}, "image_url": {"/desk.png"}})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Price must be a number")
	assert.Equal(t, int64(len(store.SeedProducts)), app.count(t))
}

func TestRouter_Logout(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, _ := app.get(t, handler.RouteLogout)
	requireRedirect(t, resp, handler.RouteLogin)

	resp, _ = app.get(t, handler.RouteAdmin)
	requireRedirect(t, resp, handler.RouteLogin)
}

func TestRouter_CrossSiteLogoutRejected(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, _ := app.do(t, http.MethodGet, handler.RouteLogout, nil, map[string]string{"Sec-Fetch-Site": "cross-site"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = app.get(t, handler.RouteAdmin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.do(t, http.MethodGet, handler.RouteLogout, nil, map[string]string{"Sec-Fetch-Site": "same-origin"})
	requireRedirect(t, resp, handler.RouteLogin)
}

func TestRouter_CrossOriginPostRejected(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	tests := []struct {
		name   string
		path   string
		header map[string]string
	}{
		{"cross-site add", "/admin/add", map[string]string{"Sec-Fetch-Site": "cross-site"}},
		{"foreign origin delete", "/admin/delete/1", map[string]string{"Origin": "https://evil.example"}},
		{"cross-site login", handler.RouteLogin, map[string]string{"Sec-Fetch-Site": "cross-site"}},
	}

	form := url.Values{"name": {"Forged"}, "price": {"1"}, "image_url": {"/f.png"}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := app.do(t, http.MethodPost, tt.path, form, tt.header)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}

	assert.Equal(t, int64(len(store.SeedProducts)), app.count(t))
}

func TestRouter_API(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.do(t, http.MethodGet, "/api/v1/products", nil, map[string]string{"Origin": "https://other.example"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var list api.ProductListResponse
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list.Products, len(store.SeedProducts))
	assert.Equal(t, store.SeedProducts[0].Name, list.Products[0].Name)

	first := list.Products[0]
	resp, body = app.get(t, "/api/v1/products/"+strconv.FormatInt(first.ID, 10))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got api.ProductResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, first, got)

	for _, path := range []string{"/api/v1/products/9999", "/api/v1/products/abc", "/api/v1/nope"} {
		t.Run(path, func(t *testing.T) {
			resp, body := app.get(t, path)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			var errResp api.ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &errResp))
			assert.Equal(t, "not_found", errResp.Error.Code)
		})
	}
}

func TestRouter_HealthAndStatic(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, handler.RouteHealth)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, body)

	resp, _ = app.get(t, "/static/css/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
}

func TestRouter_NotFound(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/no-such-page")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `href="/"`)
}

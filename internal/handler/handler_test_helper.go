// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/testutil"
	"github.com/olegiv/oshop-go/web"
)

// testHandlerSetup creates a migrated in-memory database and a session manager.
func testHandlerSetup(t *testing.T) (*sql.DB, *scs.SessionManager) {
	t.Helper()
	return testutil.TestMemoryDB(t), testSessionManager(t)
}

// testSessionManager creates a session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// testRenderer parses the embedded templates.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	sub, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	r, err := render.New(render.Config{TemplatesFS: sub, SessionManager: sm})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r
}

// createTestProduct inserts a product through the catalog.
func createTestProduct(t *testing.T, catalog *service.Catalog, name string, price float64) model.Product {
	t.Helper()

	p, err := catalog.Create(context.Background(), model.NewProduct{
		Name:     name,
		Price:    price,
		ImageURL: "https://example.com/" + strings.ToLower(strings.ReplaceAll(name, " ", "-")) + ".jpg",
	})
	if err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return p
}

// withAdmin marks the session as admin before calling next.
func withAdmin(sm *scs.SessionManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), middleware.SessionKeyAdmin, "admin")
		next.ServeHTTP(w, r)
	})
}

// sessionRouter wraps routes in LoadAndSave so flash messages and the admin
// marker persist between requests.
func sessionRouter(sm *scs.SessionManager, routes func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	routes(r)
	return r
}

// doRequest serves one request. A non-nil form is sent URL-encoded.
func doRequest(h http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// sessionCookie returns the session cookie set by a response, if any.
func sessionCookie(t *testing.T, sm *scs.SessionManager, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == sm.Cookie.Name {
			return c
		}
	}
	t.Fatalf("response did not set cookie %q", sm.Cookie.Name)
	return nil
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

// assertRedirect checks for a 303 to the given location.
func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	assertStatus(t, w.Code, http.StatusSeeOther)
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Location = %q; want %q", got, location)
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oshop-go/internal/cache"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/version"
)

var testVersion = version.Info{Version: "v1.2.3", GitCommit: "abc1234", BuildTime: "2026-01-01T00:00:00Z"}

func newTestHealthHandler(t *testing.T) (*HealthHandler, *sql.DB, *scs.SessionManager) {
	t.Helper()

	db, sm := testHandlerSetup(t)
	mem := cache.NewMemoryCache(time.Minute, 0)
	t.Cleanup(func() { _ = mem.Close() })

	h := NewHealthHandler(db, service.NewCatalog(db, mem, time.Minute), mem, sm, testVersion)
	return h, db, sm
}

// healthRouter mounts the health routes, optionally as a signed-in admin.
func healthRouter(h *HealthHandler, sm *scs.SessionManager, admin bool) http.Handler {
	return sessionRouter(sm, func(r chi.Router) {
		if admin {
			r.Use(func(next http.Handler) http.Handler { return withAdmin(sm, next) })
		}
		r.Get(RouteHealth, h.Health)
		r.Get(RouteHealth+"/live", h.Liveness)
		r.Get(RouteHealth+"/ready", h.Readiness)
	})
}

func TestHealthHandler_Health_Public(t *testing.T) {
	h, _, sm := newTestHealthHandler(t)

	w := doRequest(healthRouter(h, sm, false), http.MethodGet, "/health?verbose=true", nil)

	resp := assertJSONResponse(t, w, http.StatusOK)
	if resp["status"] != StatusHealthy {
		t.Errorf("status = %v; want healthy", resp["status"])
	}

	// Public response should be minimal, even with verbose=true
	for _, key := range []string{"uptime", "version", "checks", "timestamp", "system", "cache"} {
		if _, ok := resp[key]; ok {
			t.Errorf("public response should not contain %s", key)
		}
	}
}

func TestHealthHandler_Health_Admin(t *testing.T) {
	h, _, sm := newTestHealthHandler(t)
	router := healthRouter(h, sm, true)

	tests := []struct {
		name       string
		target     string
		wantSystem bool
	}{
		{"default", "/health", false},
		{"verbose", "/health?verbose=true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tt.target, nil)
			assertStatus(t, w.Code, http.StatusOK)

			var resp HealthStatus
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if resp.Status != StatusHealthy {
				t.Errorf("status = %q; want healthy", resp.Status)
			}
			if resp.Version != testVersion.String() {
				t.Errorf("version = %q; want %q", resp.Version, testVersion.String())
			}
			for _, name := range []string{"database", "catalog", "cache"} {
				if c, ok := resp.Checks[name]; !ok || c.Status != StatusHealthy {
					t.Errorf("check %s = %+v; want healthy", name, c)
				}
			}
			if resp.Checks["catalog"].Message != "0 products" {
				t.Errorf("catalog message = %q; want %q", resp.Checks["catalog"].Message, "0 products")
			}
			if resp.Cache == nil || resp.Cache.Backend != "memory" {
				t.Errorf("cache stats = %+v; want memory backend", resp.Cache)
			}
			if (resp.System != nil) != tt.wantSystem {
				t.Errorf("system present = %v; want %v", resp.System != nil, tt.wantSystem)
			}
		})
	}
}

func TestHealthHandler_Health_UnhealthyDatabase(t *testing.T) {
	h, db, sm := newTestHealthHandler(t)
	_ = db.Close()

	t.Run("public", func(t *testing.T) {
		w := doRequest(healthRouter(h, sm, false), http.MethodGet, "/health", nil)

		resp := assertJSONResponse(t, w, http.StatusServiceUnavailable)
		if resp["status"] != StatusDegraded {
			t.Errorf("status = %v; want degraded", resp["status"])
		}
	})

	t.Run("admin", func(t *testing.T) {
		w := doRequest(healthRouter(h, sm, true), http.MethodGet, "/health", nil)
		assertStatus(t, w.Code, http.StatusServiceUnavailable)

		var resp HealthStatus
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if resp.Checks["database"].Status != StatusUnhealthy {
			t.Errorf("database check = %+v; want unhealthy", resp.Checks["database"])
		}
		if resp.Checks["database"].Message == "" {
			t.Error("admin response should explain the database failure")
		}
	})
}

func TestHealthHandler_Liveness(t *testing.T) {
	h, _, sm := newTestHealthHandler(t)

	w := doRequest(healthRouter(h, sm, false), http.MethodGet, "/health/live", nil)

	resp := assertJSONResponse(t, w, http.StatusOK)
	if resp["status"] != "alive" {
		t.Errorf("status = %v; want alive", resp["status"])
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	h, _, sm := newTestHealthHandler(t)

	w := doRequest(healthRouter(h, sm, false), http.MethodGet, "/health/ready", nil)

	resp := assertJSONResponse(t, w, http.StatusOK)
	if resp["status"] != "ready" {
		t.Errorf("status = %v; want ready", resp["status"])
	}
}

func TestHealthHandler_Readiness_NotReady(t *testing.T) {
	tests := []struct {
		name        string
		admin       bool
		wantMessage bool
	}{
		{"public", false, false},
		{"admin", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, db, sm := newTestHealthHandler(t)
			_ = db.Close()

			w := doRequest(healthRouter(h, sm, tt.admin), http.MethodGet, "/health/ready", nil)

			resp := assertJSONResponse(t, w, http.StatusServiceUnavailable)
			if resp["status"] != "not_ready" {
				t.Errorf("status = %v; want not_ready", resp["status"])
			}
			if _, ok := resp["message"]; ok != tt.wantMessage {
				t.Errorf("message present = %v; want %v", ok, tt.wantMessage)
			}
		})
	}
}

func TestHealthHandler_NoSessionLoaded(t *testing.T) {
	h, _, _ := newTestHealthHandler(t)

	// Called outside LoadAndSave: the admin check must not panic.
	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	resp := assertJSONResponse(t, w, http.StatusOK)
	if _, ok := resp["checks"]; ok {
		t.Error("response without a session should be the public one")
	}
}

func TestNewHealthHandler_NilOptionalDeps(t *testing.T) {
	db, _ := testHandlerSetup(t)
	h := NewHealthHandler(db, service.NewCatalog(db, nil, 0), nil, nil, version.Info{})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assertStatus(t, w.Code, http.StatusOK)

	if h.startTime.IsZero() {
		t.Error("startTime should be set")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatBytes(tt.bytes); got != tt.want {
				t.Errorf("formatBytes(%d) = %q; want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

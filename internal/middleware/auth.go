// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for the admin gate,
// request protection and request context handling.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyRequestPath holds the request path for error logging.
const ContextKeyRequestPath ContextKey = "request_path"

// SessionKeyAdmin marks an authenticated admin session. Its value is the
// admin username.
const SessionKeyAdmin = "admin"

// LoginPath is where anonymous visitors of admin routes are sent.
const LoginPath = "/login"

// RequireAdmin redirects to the login page unless the session carries the
// admin marker.
func RequireAdmin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(sm, r) {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}

// IsAdmin reports whether the request belongs to an admin session.
func IsAdmin(sm *scs.SessionManager, r *http.Request) bool {
	return AdminName(sm, r) != ""
}

// AdminName returns the username stored in the admin marker, or "".
func AdminName(sm *scs.SessionManager, r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyAdmin)
}

// RequestPath creates middleware that stores the request path in the context.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, _ := ctx.Value(ContextKeyRequestPath).(string)
	return path
}

// GetClientIP extracts the client IP from the request.
func GetClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"
)

// StripTrailingSlash redirects URLs with trailing slashes to their
// non-trailing equivalents. Excludes root path "/".
//
// GET and HEAD get a 301. Form posts such as /admin/add/ get a 308 so the
// browser resends the body to /admin/add instead of downgrading to GET.
// Leading slashes are collapsed so the Location is never protocol-relative.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" || !strings.HasSuffix(path, "/") {
			next.ServeHTTP(w, r)
			return
		}

		newURL := "/" + strings.TrimLeft(strings.TrimRight(path, "/"), "/")
		if r.URL.RawQuery != "" {
			newURL += "?" + r.URL.RawQuery
		}

		status := http.StatusMovedPermanently
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			status = http.StatusPermanentRedirect
		}
		http.Redirect(w, r, newURL, status)
	})
}

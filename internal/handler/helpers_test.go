// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    int64
		wantErr bool
	}{
		{"valid id", "123", 123, false},
		{"zero id", "0", 0, false},
		{"large id", "9999999999", 9999999999, false},
		{"empty id", "", 0, true},
		{"invalid id", "abc", 0, true},
		{"overflow", "99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithURLParams(httptest.NewRequest(http.MethodGet, "/test", nil), map[string]string{"id": tt.id})

			got, err := ParseIDParam(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseIDParam() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseIDParam() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseURLParamInt64(t *testing.T) {
	tests := []struct {
		name      string
		paramName string
		value     string
		want      int64
		wantErr   bool
	}{
		{"valid value", "product_id", "456", 456, false},
		{"empty value", "product_id", "", 0, true},
		{"invalid value", "product_id", "xyz", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithURLParams(httptest.NewRequest(http.MethodGet, "/test", nil), map[string]string{tt.paramName: tt.value})

			got, err := ParseURLParamInt64(req, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURLParamInt64() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseURLParamInt64() = %d, want %d", got, tt.want)
			}
		})
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oshop-go/internal/auth"
	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/service"
)

// MsgInvalidCredentials is shown for every rejected login.
const MsgInvalidCredentials = "Invalid credentials"

// AuthHandler handles authentication routes.
type AuthHandler struct {
	credentials     *auth.Credentials
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil to disable
// account lockout.
func NewAuthHandler(db *sql.DB, creds *auth.Credentials, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		credentials:     creds,
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// LoginData is the template data for the login page.
type LoginData struct {
	Error    string
	Username string
}

// LoginForm renders the login page. Admin sessions go straight to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.IsAdmin(h.sessionManager, r) {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}

	h.renderLogin(w, r, http.StatusOK, LoginData{})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, LoginData{Error: "Invalid form data"})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	clientIP := middleware.GetClientIP(r)
	requestURL := r.URL.RequestURI()

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(username); locked {
			_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login attempt on locked account", clientIP, requestURL, map[string]any{"username": username})
			h.renderLogin(w, r, http.StatusTooManyRequests, LoginData{
				Error:    fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining)),
				Username: username,
			})
			return
		}
	}

	if !h.credentials.Verify(username, password) {
		slog.Debug("invalid login attempt", "username", username)
		meta := map[string]any{"username": username}

		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(username); locked {
				meta["duration"] = lockDuration.String()
				_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Account locked due to failed attempts", clientIP, requestURL, meta)
				h.renderLogin(w, r, http.StatusTooManyRequests, LoginData{
					Error:    fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration)),
					Username: username,
				})
				return
			}
			meta["remaining_attempts"] = h.loginProtection.GetRemainingAttempts(username)
		}

		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login failed: invalid credentials", clientIP, requestURL, meta)
		h.renderLogin(w, r, http.StatusUnauthorized, LoginData{Error: MsgInvalidCredentials, Username: username})
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(username)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	h.sessionManager.Put(r.Context(), middleware.SessionKeyAdmin, h.credentials.Username())

	slog.Info("admin logged in", "username", username, "ip", clientIP)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "Admin logged in", clientIP, requestURL, map[string]any{"username": username})

	flashSuccess(w, r, h.renderer, redirectAdmin, "Welcome back, "+h.credentials.Username()+"!")
}

// Logout clears the admin state and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	username := middleware.AdminName(h.sessionManager, r)

	if username != "" {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "Admin logged out", middleware.GetClientIP(r), r.URL.RequestURI(), map[string]any{"username": username})
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("admin logged out", "username", username)

	flashAndRedirect(w, r, h.renderer, redirectLogin, "You have been logged out.", render.FlashInfo)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data LoginData) {
	renderPage(w, r, h.renderer, status, templateLogin, render.TemplateData{
		Title: "Admin Login",
		Data:  data,
	})
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

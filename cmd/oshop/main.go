// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/oshop-go/internal/auth"
	"github.com/olegiv/oshop-go/internal/cache"
	"github.com/olegiv/oshop-go/internal/config"
	"github.com/olegiv/oshop-go/internal/logging"
	"github.com/olegiv/oshop-go/internal/middleware"
	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/render"
	"github.com/olegiv/oshop-go/internal/scheduler"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/session"
	"github.com/olegiv/oshop-go/internal/store"
	"github.com/olegiv/oshop-go/internal/version"
	"github.com/olegiv/oshop-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "oShop - minimal storefront with an admin catalog\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_SESSION_SECRET        Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_ADMIN_USERNAME        Admin username (default: admin)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_ADMIN_PASSWORD        Admin password (or OSHOP_ADMIN_PASSWORD_HASH)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_ADMIN_PASSWORD_HASH   Admin password as an argon2id hash\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_DB_PATH               SQLite database path (default: ./data/oshop.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_SERVER_HOST           Listen host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_SERVER_PORT           Server port (default: 5000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_LOG_LEVEL             debug|info|warn|error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_REDIS_URL             Redis URL for the catalog cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_CACHE_TTL             Catalog cache TTL in seconds (default: 300)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_EVENT_RETENTION_DAYS  Event log retention, 0 disables the purge (default: 30)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSHOP_DO_SEED               Seed an empty catalog (default: true)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// parseLogLevel maps OSHOP_LOG_LEVEL to a slog level, defaulting to info.
func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// cacheBackend names the cache in use and reports whether Redis was
// configured but the memory cache was chosen instead.
func cacheBackend(cfg *config.Config, c cache.Cache) (string, bool) {
	if _, ok := c.(*cache.RedisCache); ok {
		return "redis", false
	}
	return "memory", cfg.UseRedisCache()
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		err = db.Close()
		if err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed the catalog
	ctx := context.Background()
	seeded, err := store.Seed(ctx, db, cfg.DoSeed)
	if err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	eventService := service.NewEventService(db)
	if seeded > 0 {
		_ = eventService.LogSystemEvent(ctx, model.EventLevelInfo, "Catalog seeded", map[string]any{"products": seeded})
	}

	credentials, err := auth.NewCredentials(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		return fmt.Errorf("initializing admin credentials: %w", err)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	catalogCache := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
	})
	switch backend, fallback := cacheBackend(cfg, catalogCache); {
	case fallback:
		slog.Warn("catalog cache initialized", "backend", backend, "note", "Redis unavailable, using fallback")
	default:
		slog.Info("catalog cache initialized", "backend", backend, "ttl", cfg.CacheTTLDuration())
	}
	defer func() {
		if err := catalogCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	catalog := service.NewCatalog(db, catalogCache, cfg.CacheTTLDuration())

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()

	// Initialize and start scheduler
	sched := scheduler.New(eventService, cfg.EventRetention(), logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	router, err := newRouter(routerDeps{
		DB:              db,
		Config:          cfg,
		Logger:          logger,
		Sessions:        sessionManager,
		Renderer:        renderer,
		Credentials:     credentials,
		Catalog:         catalog,
		Cache:           catalogCache,
		LoginProtection: loginProtection,
		Version:         versionInfo,
	})
	if err != nil {
		return fmt.Errorf("building router: %w", err)
	}

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

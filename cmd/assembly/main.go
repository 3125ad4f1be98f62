// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/assembly-go/internal/config"
	"github.com/olegiv/assembly-go/internal/handler/api"
	"github.com/olegiv/assembly-go/internal/logging"
	"github.com/olegiv/assembly-go/internal/middleware"
	"github.com/olegiv/assembly-go/internal/session"
	"github.com/olegiv/assembly-go/internal/store"
	"github.com/olegiv/assembly-go/internal/version"
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
		_, _ = fmt.Fprintf(os.Stderr, "Assembly - Student Assembly web backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ASSEMBLY_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ASSEMBLY_DB_PATH           SQLite database path (default: ./data/assembly.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ASSEMBLY_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ASSEMBLY_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ASSEMBLY_DO_SEED           Seed the bootstrap admin account (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("assembly %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

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
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR records to the audit log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	auditHandler := logging.NewAuditLogHandler(textHandler, db)
	logger = slog.New(auditHandler)
	slog.SetDefault(logger)
	slog.Info("audit log integration enabled", "min_level", "warn")

	// Seed the bootstrap admin account
	ctx := context.Background()
	queries := store.New(db)
	if cfg.DoSeed {
		if err := store.Seed(ctx, queries, logger); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// CSRF protection for the session-cookie admin surface
	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	// Login brute-force protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Rate limiter for anonymous feedback submissions
	feedbackLimiter := middleware.NewGlobalRateLimiter(cfg.FeedbackRateLimit, cfg.FeedbackRateBurst)
	slog.Info("feedback rate limiter initialized",
		"rate", cfg.FeedbackRateLimit, "burst", cfg.FeedbackRateBurst)

	apiHandler := api.NewHandler(db, sessionManager, loginProtection)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))

	r.Use(sessionManager.LoadAndSave)

	// Health and version endpoint
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := db.PingContext(req.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = fmt.Fprintf(w, `{"status":%q,"version":%q}`+"\n", status, versionInfo.Version)
	})

	r.Route("/api", func(r chi.Router) {
		// Public surface
		r.Group(func(r chi.Router) {
			r.Use(feedbackLimiter.Middleware())
			r.Post("/feedback", apiHandler.SubmitFeedback)
		})

		r.Get("/publications", apiHandler.ListPublications)
		r.Get("/publications/slug/{slug}", apiHandler.GetPublicationBySlug)
		r.Get("/publications/{id}", apiHandler.GetPublication)
		r.Get("/events", apiHandler.ListEvents)
		r.Get("/events/{id}", apiHandler.GetEvent)

		// Admin surface
		r.Route("/admin", func(r chi.Router) {
			r.Use(csrfMiddleware)
			r.Use(middleware.LoadUser(sessionManager, db))

			// Login sits outside the admin gate, guarded by rate
			// limiting and account lockout instead
			r.Group(func(r chi.Router) {
				r.Use(loginProtection.Middleware())
				r.Post("/login", apiHandler.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth())
				r.Post("/logout", apiHandler.Logout)
				r.Get("/me", apiHandler.Me)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Get("/publications", apiHandler.AdminListPublications)
				r.Post("/publications", apiHandler.CreatePublication)
				r.Get("/publications/{id}", apiHandler.AdminGetPublication)
				r.Put("/publications/{id}", apiHandler.ReplacePublication)
				r.Patch("/publications/{id}", apiHandler.PatchPublication)
				r.Delete("/publications/{id}", apiHandler.DeletePublication)

				r.Get("/events", apiHandler.AdminListEvents)
				r.Post("/events", apiHandler.CreateEvent)
				r.Get("/events/{id}", apiHandler.AdminGetEvent)
				r.Patch("/events/{id}", apiHandler.PatchEvent)
				r.Delete("/events/{id}", apiHandler.DeleteEvent)

				r.Get("/feedbacks", apiHandler.AdminListFeedbacks)
				r.Patch("/feedbacks/{id}", apiHandler.PatchFeedback)
				r.Delete("/feedbacks/{id}", apiHandler.DeleteFeedback)

				r.Get("/users", apiHandler.AdminListUsers)
				r.Patch("/users/{id}", apiHandler.PatchUser)
				r.Delete("/users/{id}", apiHandler.DeleteUser)
				r.Post("/register", apiHandler.Register)

				r.Get("/audit", apiHandler.AdminListAudit)
			})
		})
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

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

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command nexlify runs the Nexlify administration panel: a session-based
// login, role-gated navigation and table-oriented CRUD pages over SQLite
// or MySQL.
package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/p19091985/nexlify-go/internal/cache"
	"github.com/p19091985/nexlify-go/internal/config"
	"github.com/p19091985/nexlify-go/internal/handler"
	"github.com/p19091985/nexlify-go/internal/logging"
	"github.com/p19091985/nexlify-go/internal/middleware"
	"github.com/p19091985/nexlify-go/internal/render"
	"github.com/p19091985/nexlify-go/internal/repository"
	"github.com/p19091985/nexlify-go/internal/scheduler"
	"github.com/p19091985/nexlify-go/internal/service"
	"github.com/p19091985/nexlify-go/internal/session"
	"github.com/p19091985/nexlify-go/internal/store"
	"github.com/p19091985/nexlify-go/web"
)

// Build-time variables injected via ldflags.
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Nexlify - Painel Administrativo\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEXLIFY_SESSION_SECRET     Session encryption key (required with login, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEXLIFY_DATABASE_ENABLED   Enable database access (default: true)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEXLIFY_USE_LOGIN          Require login; false injects a developer identity (default: true)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEXLIFY_DB_DRIVER          Database driver: sqlite|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEXLIFY_DB_PATH            SQLite database path (default: ./data/nexlify.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEXLIFY_DB_DSN             MySQL data source name (required for mysql)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEXLIFY_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEXLIFY_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEXLIFY_REDIS_URL          Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/p19091985/nexlify-go\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("nexlify %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
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

	// A flag combination that cannot work halts startup with a descriptive
	// message instead of limping along.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog, err := logging.Setup(logging.Options{
		Level:           cfg.LogLevel,
		RedirectConsole: cfg.RedirectConsoleToLog,
		Path:            fmt.Sprintf("%s/nexlify-%s.log", cfg.LogDir, time.Now().Format("2006-01-02")),
	})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	logger.Info("starting nexlify",
		"version", appVersion,
		"env", cfg.Env,
		"database_enabled", cfg.DatabaseEnabled,
		"use_login", cfg.UseLogin)

	// Database is optional: with NEXLIFY_DATABASE_ENABLED=false every data
	// page renders a notice instead of its tables.
	var db *sql.DB
	if cfg.DatabaseEnabled {
		opts := store.DefaultOptions(cfg.DBPath)
		opts.Driver = cfg.DBDriver
		opts.DSN = cfg.DBDSN

		db, err = store.Open(opts)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() { _ = db.Close() }()

		if cfg.InitDBOnStartup {
			if err := store.Migrate(db, cfg.DBDriver); err != nil {
				return fmt.Errorf("migrating database: %w", err)
			}
			if cfg.DoSeed {
				if err := store.Seed(context.Background(), db, logger); err != nil {
					return fmt.Errorf("seeding database: %w", err)
				}
			}
		}
	}

	sessionManager := session.New(db, cfg.DBDriver, cfg.IsDevelopment())

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("sub templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	var appCache cache.Cache
	if cfg.UseRedisCache() {
		appCache, err = cache.NewRedis(cfg.RedisURL, cfg.CachePrefix, cacheTTL)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-memory cache", "error", err)
			appCache = cache.NewMemory(cacheTTL)
		} else {
			logger.Info("using redis cache")
		}
	} else {
		appCache = cache.NewMemory(cacheTTL)
	}
	defer func() { _ = appCache.Close() }()

	// Services and handlers degrade to nil when the database is off.
	var (
		repo        *repository.Repository
		authService *service.Auth
		vegService  *service.Vegetables
	)
	if db != nil {
		repo = repository.New(db)
		authService = service.NewAuth(repo, logger)
		vegService = service.NewVegetables(db, logger)
	}

	authHandler := handler.NewAuthHandler(authService, renderer, sessionManager)
	homeHandler, err := handler.NewHomeHandler(renderer)
	if err != nil {
		return fmt.Errorf("creating home handler: %w", err)
	}
	catsHandler := handler.NewCatsHandler(repo, renderer)
	vegHandler := handler.NewVegetablesHandler(repo, vegService, renderer, appCache)
	usersHandler := handler.NewUsersHandler(repo, renderer)
	auditHandler := handler.NewAuditHandler(repo, renderer)
	healthHandler := handler.NewHealthHandler(db)

	// Nightly audit retention sweep; a no-op when retention is unset.
	if db != nil && cfg.AuditRetentionDays > 0 {
		sched := scheduler.New(db, cfg.AuditRetentionDays, logger)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}

	// With login off no secret is configured; the CSRF layer still wants a
	// key, so a throwaway one is generated for the process lifetime.
	csrfKey := []byte(cfg.SessionSecret)
	if len(csrfKey) == 0 {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			return fmt.Errorf("generating csrf key: %w", err)
		}
	}

	r := buildRouter(cfg, csrfKey, sessionManager, routerHandlers{
		auth:   authHandler,
		home:   homeHandler,
		cats:   catsHandler,
		veg:    vegHandler,
		users:  usersHandler,
		audit:  auditHandler,
		health: healthHandler,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

type routerHandlers struct {
	auth   *handler.AuthHandler
	home   *handler.HomeHandler
	cats   *handler.CatsHandler
	veg    *handler.VegetablesHandler
	users  *handler.UsersHandler
	audit  *handler.AuditHandler
	health *handler.HealthHandler
}

// buildRouter assembles the middleware chain and the route tree. Each page
// group is guarded by the same allow-list that drives the navigation menu,
// so a user can never reach a page the menu hides from them.
func buildRouter(cfg *config.Config, csrfKey []byte, sessionManager *scs.SessionManager, h routerHandlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	// Health endpoint stays outside the session and CSRF layers so probes
	// do not allocate sessions.
	r.Get(handler.RouteHealth, h.health.Health)

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.Identify(sessionManager, cfg.UseLogin))
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(csrfKey, cfg.IsDevelopment(), cfg.ServerPort)))

		// With login disabled the development identity is always present,
		// so the login routes are not mounted at all.
		if cfg.UseLogin {
			r.Get(handler.RouteLogin, h.auth.LoginForm)
			r.With(middleware.LoginRateLimit(1, 5)).Post(handler.RouteLogin, h.auth.Login)
			r.Get(handler.RouteLogout, h.auth.Logout)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireIdentity())

			r.With(pageGuard(handler.RouteRoot)).Get(handler.RouteRoot, h.home.Home)

			r.Route(handler.RouteCats, func(r chi.Router) {
				r.Use(pageGuard(handler.RouteCats))
				r.Get("/", h.cats.List)
				r.Post("/", h.cats.Create)
				r.Post("/atualizar", h.cats.Update)
				r.Post("/excluir", h.cats.Delete)
			})

			r.Route(handler.RouteVegetables, func(r chi.Router) {
				r.Use(pageGuard(handler.RouteVegetables))
				r.Get("/", h.veg.List)
				r.Post("/", h.veg.Create)
				r.Post("/excluir", h.veg.Delete)
				r.Post("/reclassificar", h.veg.Reclassify)
				r.Post("/tipos", h.veg.CreateType)
				r.Post("/tipos/excluir", h.veg.DeleteType)
			})

			r.Route(handler.RouteAudit, func(r chi.Router) {
				r.Use(pageGuard(handler.RouteAudit))
				r.Get("/", h.audit.List)
			})

			r.Route(handler.RouteUsers, func(r chi.Router) {
				r.Use(pageGuard(handler.RouteUsers))
				r.Get("/", h.users.List)
				r.Post("/", h.users.Create)
				r.Post("/atualizar", h.users.Update)
				r.Post("/excluir", h.users.Delete)
			})
		})
	})

	return r
}

// pageGuard returns the role middleware for a registered page, looked up
// from the shared navigation registry.
func pageGuard(path string) func(http.Handler) http.Handler {
	for _, p := range handler.Pages {
		if p.Path == path {
			return middleware.RequireRoles(p.Allowed...)
		}
	}
	// Unregistered paths admit any authenticated user.
	return middleware.RequireRoles()
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkrish/fintrack/internal/auth"
	"github.com/mkrish/fintrack/internal/config"
	"github.com/mkrish/fintrack/internal/mail"
	"github.com/mkrish/fintrack/internal/middleware"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/permission"
	"github.com/mkrish/fintrack/internal/schedule"
	"github.com/mkrish/fintrack/internal/scope"
	"github.com/mkrish/fintrack/internal/service"
	"github.com/mkrish/fintrack/internal/storage"
	"github.com/mkrish/fintrack/internal/storage/sqlite"
	"github.com/mkrish/fintrack/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap(ctx, store); err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	scopes := scope.NewResolver(store)
	perms := permission.NewEvaluator(store, scopes)
	scheduler := schedule.New(store)
	sender := mail.LogSender{}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	resetService := auth.NewPasswordResetService(store, sender, slog.Default())

	authService := service.NewAuthService(authenticator, jwtManager, resetService, scopes)
	recurringService := service.NewRecurringService(store, scopes, perms, scheduler)

	// Sweep loop: executes due recurring schedules and prunes expired reset
	// tokens. One pass runs immediately on startup.
	go func() {
		sweep := func() {
			if err := recurringService.ProcessDue(ctx); err != nil {
				slog.Error("recurring sweep failed", "error", err)
			}
			if err := resetService.CleanupExpired(ctx); err != nil {
				slog.Error("reset token cleanup failed", "error", err)
			}
		}
		sweep()

		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())
	registerAuthRoutes(mux, authService)
	mux.Handle("POST /sweep", middleware.RequireAuth(jwtManager, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := recurringService.ProcessDue(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})))

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: middleware.Logging(mux),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "address", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// bootstrap seeds the deployment on first run: the owner account (from
// OWNER_* env vars) and the shared default categories.
func bootstrap(ctx context.Context, store storage.Store) error {
	owners, err := store.ListUsersByRole(ctx, models.RoleOwner)
	if err != nil {
		return err
	}
	password := os.Getenv("OWNER_PASSWORD")
	if len(owners) == 0 && password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		owner := &models.User{
			Username:     getEnv("OWNER_USERNAME", "owner"),
			Email:        getEnv("OWNER_EMAIL", "owner@localhost"),
			PasswordHash: hash,
			Role:         models.RoleOwner,
		}
		if err := store.CreateUser(ctx, owner); err != nil {
			return err
		}
		slog.Info("owner account created", "username", owner.Username)
	}

	defaults, err := store.ListDefaultCategories(ctx)
	if err != nil {
		return err
	}
	if len(defaults) > 0 {
		return nil
	}
	seed := []struct{ name, color string }{
		{"Salary", "#4caf50"},
		{"Groceries", "#ff9800"},
		{"Rent", "#f44336"},
		{"Utilities", "#2196f3"},
		{"Transport", "#9c27b0"},
		{"Entertainment", "#00bcd4"},
		{"Healthcare", "#e91e63"},
		{"Other", "#607d8b"},
	}
	for _, c := range seed {
		category := &models.Category{Name: c.name, Color: c.color, IsDefault: true}
		if err := store.CreateCategory(ctx, category); err != nil {
			return err
		}
	}
	slog.Info("default categories seeded", "count", len(seed))
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

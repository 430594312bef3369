package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/ZanzyTHEbar/teamconstructor/docs"
	"github.com/ZanzyTHEbar/teamconstructor/internal/cache"
	"github.com/ZanzyTHEbar/teamconstructor/internal/config"
	"github.com/ZanzyTHEbar/teamconstructor/internal/database"
	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
	"github.com/ZanzyTHEbar/teamconstructor/internal/journal"
	"github.com/ZanzyTHEbar/teamconstructor/internal/middleware"
	"github.com/ZanzyTHEbar/teamconstructor/internal/monitoring"
	"github.com/ZanzyTHEbar/teamconstructor/internal/ratelimit"
	"github.com/ZanzyTHEbar/teamconstructor/internal/security"
	"github.com/ZanzyTHEbar/teamconstructor/internal/server"
)

//	@title						Team Constructor API
//	@version					1.0.0
//	@description				Psychometric scoring of questionnaires, pairs and teams.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	results := database.NewResultService(repo, cfg.TestThreshold, cfg.Diff)

	staff, err := journal.New(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize staff journal", "error", err)
		os.Exit(1)
	}

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	redisClient, err := ratelimit.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("Redis unavailable, continuing with in-memory rate limiting", "error", err)
	}
	defer apperrors.SafeClose(redisClient, "redis")

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.IPLimitPerMin = cfg.RateLimitPerMinute
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig, appMetrics)
	defer limiter.Close()

	appCache := cache.NewCache(cfg.CacheTTL)
	defer appCache.Close()

	securityConfig := security.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = cfg.AllowedOrigins
	securityConfig.RequestTimeout = cfg.RequestTimeout
	securityConfig.EnableHSTS = cfg.GinMode == gin.ReleaseMode

	auth := security.NewAdminAuth(cfg.JWTSecret, cfg.AdminPassword, cfg.TokenTTL)
	if !cfg.AdminEnabled() {
		slog.Warn("ADMIN_PASSWORD is not set, admin login is disabled")
	} else if cfg.UsesDefaultSecret() {
		slog.Warn("JWT_SECRET is not set, admin tokens use the built-in secret")
	}

	srv := server.New(server.Options{
		TestThreshold: cfg.TestThreshold,
		Diff:          cfg.Diff,
	}, server.Deps{
		DB:          db,
		Results:     results,
		Journal:     staff,
		Cache:       appCache,
		Limiter:     limiter,
		Security:    security.NewSecurityMiddleware(securityConfig),
		Auth:        auth,
		Metrics:     appMetrics,
		Logger:      appLogger,
		Compression: middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
	})

	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Retention purge (runs daily)
	go func() {
		purge := func() {
			purged, err := results.Purge(ctx, cfg.Retention())
			if err != nil {
				slog.Error("Failed to purge expired results", "error", err)
				return
			}
			if purged > 0 {
				appLogger.SystemLogger("retention_purge",
					fmt.Sprintf("purged %d results older than %d days", purged, cfg.RetentionDays))
			}
		}

		purge()
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purge()
			}
		}
	}()

	// Start server with graceful shutdown
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "mode", cfg.GinMode, "data_dir", cfg.DataDir)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

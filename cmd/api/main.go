package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/app/migrate"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/config"
	httpx "github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/http"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/logger"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/ratelimit"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/repository/postgres"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/service/auth"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/service/backup"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/service/project"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/service/team"
)

func main() {
	cfg := config.Load()
	log := logger.New("api", slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := migrate.Connect(ctx, cfg.DatabaseURL, cfg.DBConnectAttempts, cfg.DBConnectBaseDelay, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)

	backupSvc := backup.New(repo, log)
	backupWorker := backup.NewWorker(backupSvc, cfg.BackupQueueSize, log)
	backupWorker.Run()
	defer backupWorker.Close()

	authSvc := auth.New(repo, repo, log, cfg)
	teamSvc := team.New(repo, repo, backupWorker, log)
	projectSvc := project.New(repo, repo, log)

	var limits ratelimit.Registry = ratelimit.NewMemoryRegistry(httpx.RoutePolicies())
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimits, err := ratelimit.NewRedisRegistry(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, httpx.RoutePolicies(), log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limits = redisLimits
		}
	}

	router := httpx.NewRouter(log, cfg.APIBasePath, authSvc, teamSvc, projectSvc, backupSvc, limits, pool.Ping)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "env", cfg.Environment)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

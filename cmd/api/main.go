package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alciverdev/farmatup-API/internal/auth"
	"github.com/alciverdev/farmatup-API/internal/cache"
	"github.com/alciverdev/farmatup-API/internal/config"
	"github.com/alciverdev/farmatup-API/internal/db"
	httpx "github.com/alciverdev/farmatup-API/internal/http"
	"github.com/alciverdev/farmatup-API/internal/observability"
	"github.com/alciverdev/farmatup-API/internal/repo/cached"
	"github.com/alciverdev/farmatup-API/internal/repo/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	// Tracing is optional; a noop provider stays in place when disabled.
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "farmatup-api", cfg.OTLPEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	seedCtx, cancelSeed := config.WithTimeout(10 * time.Second)
	if err := db.EnsureAdminUser(seedCtx, pool, cfg); err != nil {
		cancelSeed()
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
	cancelSeed()

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	usersRepo := postgres.NewUsersRepo(pool, prom)
	branchesRepo := postgres.NewBranchesRepo(pool, prom)

	var branchCache cache.Store
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, 30*time.Second)

		pingCtx, cancelPing := config.WithTimeout(2 * time.Second)
		err := redisCache.Ping(pingCtx)
		cancelPing()
		if err != nil {
			log.Error("redis connection failed", "err", err)
			os.Exit(1)
		}
		defer redisCache.Close()

		branchCache = redisCache
	} else {
		branchCache = cache.NewMemory(30 * time.Second)
	}
	branches := cached.NewBranches(branchesRepo, branchCache)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL)

	ping := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()
		return pool.Ping(ctx)
	}

	router := httpx.NewRouter(httpx.Deps{
		Cfg:      cfg,
		Log:      log,
		Users:    usersRepo,
		Branches: branches,
		JWT:      jwtManager,
		Issuer:   jwtManager,
		Metrics:  registry,
		Prom:     prom,
		Ping:     ping,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})
	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")
	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

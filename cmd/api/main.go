package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-maids-backend/config"
	v1 "go-maids-backend/internal/delivery/http/v1"
	"go-maids-backend/internal/domain"
	"go-maids-backend/internal/events"
	"go-maids-backend/internal/repository/postgres"
	"go-maids-backend/internal/usecase"
	"go-maids-backend/internal/worker"
	"go-maids-backend/pkg/auth"
	"go-maids-backend/pkg/database"
	"go-maids-backend/pkg/logger"
	"go-maids-backend/pkg/redis"
)

// @title           Maids Marketplace Jobs API
// @version         1.0
// @description     Jobs bounded context for the domestic worker recruitment marketplace.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting jobs backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Event Publisher
	// Without Redis the events still flow, they just end up in the log.
	var publisher domain.EventPublisher = events.NewLogPublisher()
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, falling back to log publisher", "error", err)
		} else {
			publisher = events.NewRedisPublisher(redis.Client())
			defer redis.Close()
		}
	}

	// 5. Setup Repositories
	jobRepo := postgres.NewJobPostingRepository(dbPool)
	applicationRepo := postgres.NewJobApplicationRepository(dbPool)
	maidRepo := postgres.NewMaidProfileRepository(dbPool)
	txManager := postgres.NewTxManager(dbPool)

	// 6. Setup UseCases
	jobUC := usecase.NewJobUsecase(jobRepo, publisher, cfg.JobExpiryDays)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, maidRepo, txManager, publisher)
	expiryUC := usecase.NewExpiryUsecase(jobRepo, publisher)

	// 7. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.JWKSUrl)

	// 8. Setup Expiry Worker
	if cfg.ExpirySweepOnOff {
		expiryWorker := worker.NewExpiryWorker(expiryUC, cfg.ExpirySweepCron)
		if err := expiryWorker.Start(); err != nil {
			logger.Log.Error("Failed to start expiry worker", "error", err)
			os.Exit(1)
		}
		defer expiryWorker.Stop()
	}

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		JobUC:         jobUC,
		ApplicationUC: applicationUC,
		JWKSProvider:  jwksProvider,
		Config:        cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

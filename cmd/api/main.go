package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-hr-tracker/config"
	_ "go-hr-tracker/docs" // Important for Swagger
	"go-hr-tracker/internal/delivery/http/middleware"
	v1 "go-hr-tracker/internal/delivery/http/v1"
	"go-hr-tracker/internal/domain"
	"go-hr-tracker/internal/repository/memory"
	"go-hr-tracker/internal/repository/postgres"
	"go-hr-tracker/internal/usecase"
	"go-hr-tracker/pkg/auth"
	"go-hr-tracker/pkg/database"
	"go-hr-tracker/pkg/logger"
	"go-hr-tracker/pkg/redis"
	"go-hr-tracker/pkg/security"
	"go-hr-tracker/pkg/storage"

	goredis "github.com/redis/go-redis/v9"
)

// @title           HR Candidate Tracker API
// @version         1.0
// @description     Candidate registration and status workflow.
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
	logger.Init(cfg.Environment)
	logger.Log.Info("Starting HR candidate tracker", "port", cfg.Port, "storage", cfg.StorageDriver)

	audit := security.NewAuditLogger("hr-tracker", cfg.Environment)
	defer audit.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthProbes := map[string]usecase.HealthProbe{}

	// 3. Setup Repositories
	var candidateRepo domain.CandidateRepository
	switch cfg.StorageDriver {
	case "memory":
		logger.Log.Warn("Using in-memory storage; data is lost on restart")
		candidateRepo = memory.NewCandidateRepository()
	default:
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := postgres.EnsureSchema(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to prepare database schema", "error", err)
			os.Exit(1)
		}
		candidateRepo = postgres.NewCandidateRepository(dbPool)
		healthProbes["database"] = func(ctx context.Context) error { return dbPool.Ping(ctx) }
	}

	resumeStore, err := newResumeStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to set up resume storage", "error", err)
		os.Exit(1)
	}

	accounts, err := auth.ParseAccounts(cfg.AdminAccounts)
	if err != nil {
		logger.Log.Error("Invalid ADMIN_ACCOUNTS", "error", err)
		os.Exit(1)
	}
	if len(accounts) == 0 {
		logger.Log.Warn("No admin accounts configured; /admin/login will reject every request")
	}
	adminRepo := memory.NewAdminAccountRepository(accounts)

	// 4. Setup Redis (optional)
	var redisClient *goredis.Client
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		if !errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Warn("Redis unavailable, rate limits fall back to process memory", "error", err)
		}
	} else {
		redisClient = redis.Client()
		defer redis.Close()
	}
	optionalProbes := map[string]usecase.HealthProbe{"redis": redis.HealthCheck}

	// 5. Setup UseCases
	policy, err := domain.PolicyByName(cfg.StatusPolicy)
	if err != nil {
		logger.Log.Error("Invalid STATUS_POLICY", "error", err)
		os.Exit(1)
	}

	candidateUC := usecase.NewCandidateUsecase(candidateRepo, resumeStore, audit, usecase.CandidateConfig{
		MaxResumeBytes:  cfg.MaxUploadBytes,
		DefaultPageSize: cfg.DefaultPageSize,
		Policy:          policy,
	})
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	authUC := usecase.NewAuthUsecase(adminRepo, issuer)
	healthUC := usecase.NewHealthUsecase(healthProbes, optionalProbes)

	// 6. Setup Auth Verification
	var jwksProvider *auth.Provider
	if cfg.JWKSUrl != "" {
		jwksProvider = auth.NewProvider(cfg.JWKSUrl)
	}
	verifier := auth.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer, jwksProvider)

	rateLimiter := middleware.NewRateLimiter(redisClient, audit)
	go rateLimiter.Cleanup(ctx, 5*time.Minute)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		CandidateUC:   candidateUC,
		AuthUC:        authUC,
		HealthUC:      healthUC,
		TokenVerifier: verifier,
		RateLimiter:   rateLimiter,
		UploadLimiter: security.NewUploadLimiter(redisClient, cfg.UploadsPerMinute, cfg.UploadsPerDay),
		LoginTracker:  security.NewLoginTracker(redisClient, security.DefaultLoginTrackerConfig(), audit),
		Audit:         audit,
		Config:        cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func newResumeStore(ctx context.Context, cfg *config.Config) (domain.ResumeStore, error) {
	if cfg.ResumeStorage != "s3" {
		store, err := storage.NewLocalStore(cfg.ResumeDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Provider:        storage.S3Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		WasabiEndpoint:  cfg.WasabiEndpoint,
	})
	if err != nil {
		return nil, err
	}
	if err := store.CheckBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

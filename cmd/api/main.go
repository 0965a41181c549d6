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

	"github.com/jackc/pgx/v5/pgxpool"

	"interview-coach-backend/config"
	_ "interview-coach-backend/docs" // Important for Swagger
	v1 "interview-coach-backend/internal/delivery/http/v1"
	"interview-coach-backend/internal/domain"
	"interview-coach-backend/internal/interview"
	"interview-coach-backend/internal/repository/kv"
	"interview-coach-backend/internal/repository/postgres"
	"interview-coach-backend/internal/scoring"
	"interview-coach-backend/internal/usecase"
	"interview-coach-backend/pkg/auth"
	"interview-coach-backend/pkg/database"
	"interview-coach-backend/pkg/email"
	"interview-coach-backend/pkg/embedding"
	"interview-coach-backend/pkg/kvstore"
	"interview-coach-backend/pkg/logger"
	"interview-coach-backend/pkg/redis"
	"interview-coach-backend/pkg/security"
	"interview-coach-backend/pkg/security/antivirus"
)

const sweepInterval = time.Minute

// @title           Interview Coach API
// @version         1.0
// @description     Answer scoring, CV analysis and mock interview sessions.
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

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	security.InitSecurityLogger("interview-coach-api", cfg.GinMode)
	logger.Log.Info("Starting interview coach backend", "port", cfg.Port)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Redis (optional)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory store", "error", err)
		}
	}
	defer redis.Close()

	store := kvstore.New(redis.Client())
	if mem, ok := store.(*kvstore.MemoryStore); ok {
		go sweepExpired(rootCtx, mem)
	}

	// 4. Setup Database (optional)
	var (
		dbPool     *pgxpool.Pool
		dbPinger   usecase.Pinger
		userRepo   domain.UserRepository
		reportRepo domain.InterviewReportRepository
		cvRepo     domain.CVAnalysisRepository
	)
	if cfg.DBUrl != "" {
		dbPool, err = database.NewPostgresConnection(rootCtx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		dbPinger = dbPool
		userRepo = postgres.NewUserRepository(dbPool)
		reportRepo = postgres.NewInterviewReportRepository(dbPool)
		cvRepo = postgres.NewCVAnalysisRepository(dbPool)
	} else {
		userRepo = kv.NewUserRepository(store)
	}

	// 5. Setup Embedding Provider
	var embedder scoring.Embedder
	embedClient, err := embedding.New(rootCtx, embedding.Config{
		Provider:     cfg.EmbeddingProvider,
		APIKey:       cfg.LLMAPIKey,
		Endpoint:     cfg.EmbeddingEndpoint,
		Model:        cfg.EmbeddingModel,
		GeminiAPIKey: cfg.GeminiAPIKey,
		Timeout:      cfg.EmbeddingTimeout(),
	})
	switch {
	case errors.Is(err, embedding.ErrNotConfigured):
		logger.Log.Info("No embedding provider configured, semantic scoring uses heuristics")
	case err != nil:
		logger.Log.Error("Failed to create embedding client", "error", err)
		os.Exit(1)
	default:
		defer embedClient.Close()
		embedder = embedClient
	}

	// 6. Question Bank
	questions := interview.DefaultQuestions()
	if cfg.QuestionBankFile != "" {
		questions, err = interview.LoadQuestionBank(cfg.QuestionBankFile)
		if err != nil {
			logger.Log.Error("Failed to load question bank", "file", cfg.QuestionBankFile, "error", err)
			os.Exit(1)
		}
	}

	// 7. Setup Auth and Email
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry(), "interview-coach")
	if err != nil {
		logger.Log.Error("Failed to create token service", "error", err)
		os.Exit(1)
	}
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - verification codes will only be logged")
	}

	var scanner antivirus.Scanner
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAV(cfg.ClamAVAddress, cfg.ClamAVTimeout())
		if err := clam.Ping(rootCtx); err != nil {
			logger.Log.Warn("ClamAV not reachable, uploads will be refused until it is", "address", cfg.ClamAVAddress, "error", err)
		}
		scanner = clam
	}

	// 8. Setup UseCases
	providerName := usecase.HeuristicProvider
	if embedder != nil {
		providerName = embedder.Name()
	}
	authUC := usecase.NewAuthUsecase(userRepo, tokens, store, emailService)
	scoringUC := usecase.NewScoringUsecase(embedder, cvRepo)
	interviewUC := usecase.NewInterviewUsecase(kv.NewSessionStore(store, cfg.SessionTTL()), reportRepo, questions)
	healthUC := usecase.NewHealthUsecase(dbPinger, store, providerName)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		ScoringUC:     scoringUC,
		InterviewUC:   interviewUC,
		HealthUC:      healthUC,
		Tokens:        tokens,
		UploadLimiter: security.NewUploadLimiter(redis.Client(), cfg.CVUploadsPerMinute, cfg.CVUploadsPerDay),
		Scanner:       scanner,
		Config:        cfg,
	})

	// 10. Start Server
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
	<-rootCtx.Done()
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func sweepExpired(ctx context.Context, mem *kvstore.MemoryStore) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := mem.Sweep(); n > 0 {
				logger.Log.Debug("Expired in-memory entries removed", "count", n)
			}
		}
	}
}

package v1

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"interview-coach-backend/config"
	"interview-coach-backend/internal/delivery/http/middleware"
	"interview-coach-backend/internal/domain"
	"interview-coach-backend/pkg/auth"
	"interview-coach-backend/pkg/security"
	"interview-coach-backend/pkg/security/antivirus"
	"interview-coach-backend/pkg/validation"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	ScoringUC     domain.ScoringUsecase
	InterviewUC   domain.InterviewUsecase
	HealthUC      domain.HealthUsecase
	Tokens        *auth.TokenService
	UploadLimiter *security.UploadLimiter
	Scanner       antivirus.Scanner
	Config        *config.Config
}

var registerValidatorsOnce sync.Once

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config

	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validation.RegisterValidators(v)
		}
	})

	r := gin.New()

	// CORS must be first so preflight requests never reach the limiters
	r.Use(middleware.CORSMiddleware(append([]string{cfg.FrontendURL}, cfg.AllowedOrigins...), cfg.IsProduction()))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.BlockObviousBotsMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg)))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	NewHealthHandler(v1, deps.HealthUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	public := v1.Group("")
	public.Use(middleware.OptionalAuthMiddleware(deps.Tokens))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		NewAuthHandler(public, protected, deps.AuthUC, AuthRouteMiddleware{
			BotDetection: middleware.BotDetectionMiddleware(cfg.BotScoreThreshold),
			LoginLimit:   middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(cfg)),
			VerifyLimit:  middleware.RateLimitMiddleware(middleware.VerificationRateLimitConfig(cfg)),
			ConfirmLimit: middleware.RateLimitMiddleware(middleware.VerificationConfirmRateLimitConfig(cfg)),
		}, cfg.IsProduction())
		NewScoringHandler(public, protected, deps.ScoringUC, UploadPolicy{
			Limiter:  deps.UploadLimiter,
			Scanner:  deps.Scanner,
			MaxBytes: cfg.MaxCVUploadBytes,
		}, middleware.RateLimitMiddleware(middleware.ScoringRateLimitConfig(cfg)))
		NewInterviewHandler(protected, deps.InterviewUC)
	}

	return r
}

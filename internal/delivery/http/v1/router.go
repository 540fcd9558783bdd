package v1

import (
	"net/http"

	"go-hr-tracker/config"
	"go-hr-tracker/internal/delivery/http/middleware"
	"go-hr-tracker/internal/delivery/http/response"
	"go-hr-tracker/internal/domain"
	"go-hr-tracker/internal/usecase"
	"go-hr-tracker/pkg/auth"
	"go-hr-tracker/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	CandidateUC   domain.CandidateUsecase
	AuthUC        domain.AuthUsecase
	HealthUC      usecase.HealthUsecase
	TokenVerifier *auth.TokenVerifier
	RateLimiter   *middleware.RateLimiter
	UploadLimiter *security.UploadLimiter
	LoginTracker  *security.LoginTracker
	Audit         *security.AuditLogger
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL, deps.Config.Environment)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewRateLimiter(nil, deps.Audit)
	}

	v1 := r.Group("/v1")
	v1.Use(rateLimiter.Middleware(middleware.DefaultRateLimitConfig()))

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	maxUpload := deps.Config.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = domain.DefaultMaxResumeBytes
	}
	NewCandidateHandler(v1, deps.CandidateUC,
		middleware.BodyLimit(maxUpload+1<<20), // resume plus form fields
		middleware.UploadRateLimit(deps.UploadLimiter, deps.Audit),
	)

	admin := v1.Group("/admin")
	NewAuthHandler(admin, deps.AuthUC, deps.LoginTracker, deps.Audit, rateLimiter.Middleware(middleware.LoginRateLimitConfig()))

	// Protected routes
	protected := admin.Group("")
	protected.Use(middleware.AdminAuth(deps.TokenVerifier, deps.Audit))
	{
		NewAdminHandler(protected, deps.CandidateUC)
	}

	return r
}

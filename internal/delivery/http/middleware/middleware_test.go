package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-hr-tracker/internal/delivery/http/middleware"
	"go-hr-tracker/internal/domain"
	"go-hr-tracker/pkg/apperror"
	"go-hr-tracker/pkg/auth"
	"go-hr-tracker/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterInMemory(t *testing.T) {
	limiter := middleware.NewRateLimiter(nil, nil)
	r := gin.New()
	r.Use(limiter.Middleware(middleware.RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		KeyPrefix: "test:",
	}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestUploadRateLimitWithoutRedis(t *testing.T) {
	r := gin.New()
	r.Use(middleware.UploadRateLimit(security.NewUploadLimiter(nil, 1, 1), nil))
	r.POST("/upload", func(c *gin.Context) { c.Status(http.StatusCreated) })

	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/upload", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestAdminAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer("mw-secret", "hr-tracker", time.Hour)
	r := gin.New()
	r.Use(middleware.AdminAuth(auth.NewTokenVerifier("mw-secret", "hr-tracker", nil), nil))
	r.GET("/who", func(c *gin.Context) {
		admin, ok := domain.AdminFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, admin.Username)
	})

	request := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return serve(r, req)
	}

	t.Run("Missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request("").Code)
	})

	t.Run("Wrong scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request("Basic abc").Code)
	})

	t.Run("Non-admin role", func(t *testing.T) {
		token, _, err := issuer.Issue("intern", "viewer")
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, request("Bearer "+token).Code)
	})

	t.Run("Admin identity reaches the handler", func(t *testing.T) {
		token, _, err := issuer.Issue("hr.lead", domain.RoleAdmin)
		require.NoError(t, err)
		w := request("Bearer " + token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hr.lead", w.Body.String())
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	r.GET("/invalid", func(c *gin.Context) {
		c.Error(apperror.Validation("Please correct the highlighted fields.", map[string]string{"email": "Enter a valid email address."}))
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Error(assert.AnError)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/invalid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Enter a valid email address.", gjson.Get(w.Body.String(), "error.email").String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

package v1

import (
	"errors"
	"net/http"
	"strconv"

	"go-hr-tracker/internal/delivery/http/middleware"
	"go-hr-tracker/internal/delivery/http/response"
	"go-hr-tracker/internal/domain"
	"go-hr-tracker/pkg/apperror"
	"go-hr-tracker/pkg/logger"
	"go-hr-tracker/pkg/security"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC  domain.AuthUsecase
	tracker *security.LoginTracker
	audit   *security.AuditLogger
}

func NewAuthHandler(r *gin.RouterGroup, authUC domain.AuthUsecase, tracker *security.LoginTracker, audit *security.AuditLogger, guards ...gin.HandlerFunc) {
	handler := &AuthHandler{authUC: authUC, tracker: tracker, audit: audit}

	login := append(append([]gin.HandlerFunc{}, guards...), handler.Login)
	r.POST("/login", login...)
}

// Login godoc
// @Summary      Admin login
// @Description  Exchanges operator credentials (and a TOTP code when enrolled) for a bearer token.
// @Description  Repeated failures lock the account for a while.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginInput  true  "Credentials"
// @Success      200      {object}  response.Response{data=domain.LoginResult}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input domain.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	ctx := c.Request.Context()
	requestID := c.GetString(middleware.RequestIDKey)

	blocked, err := h.tracker.IsBlocked(ctx, input.Username)
	if err != nil {
		logger.Log.Warn("login tracker unavailable", "error", err, "request_id", requestID)
	}
	if blocked {
		h.audit.LogLoginFailed(ctx, input.Username, c.ClientIP(), requestID, "blocked")
		c.Header("Retry-After", strconv.Itoa(int(h.tracker.BlockDuration().Seconds())))
		c.Error(apperror.TooManyRequests("Too many failed attempts. Please try again later."))
		return
	}

	result, err := h.authUC.Login(c, input)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == http.StatusUnauthorized {
			h.audit.LogLoginFailed(ctx, input.Username, c.ClientIP(), requestID, "invalid_credentials")
			if _, _, terr := h.tracker.RecordFailedAttempt(ctx, input.Username, c.ClientIP(), requestID); terr != nil {
				logger.Log.Warn("failed to record login attempt", "error", terr, "request_id", requestID)
			}
		}
		c.Error(err)
		return
	}

	if err := h.tracker.ClearAttempts(ctx, result.Username); err != nil {
		logger.Log.Warn("failed to clear login attempts", "error", err, "request_id", requestID)
	}
	h.audit.LogLoginSuccess(ctx, result.Username, c.ClientIP(), requestID)
	response.Success(c, http.StatusOK, "Login successful", result)
}

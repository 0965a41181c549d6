package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"interview-coach-backend/internal/delivery/http/middleware"
	"interview-coach-backend/internal/delivery/http/response"
	"interview-coach-backend/internal/domain"
	"interview-coach-backend/pkg/apperror"
	"interview-coach-backend/pkg/security"
)

type AuthHandler struct {
	authUC       domain.AuthUsecase
	secureCookie bool
}

// AuthRouteMiddleware groups the per-route guards of the auth endpoints.
type AuthRouteMiddleware struct {
	BotDetection gin.HandlerFunc
	LoginLimit   gin.HandlerFunc
	VerifyLimit  gin.HandlerFunc
	ConfirmLimit gin.HandlerFunc
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, authUC domain.AuthUsecase, mw AuthRouteMiddleware, secureCookie bool) {
	handler := &AuthHandler{
		authUC:       authUC,
		secureCookie: secureCookie,
	}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/login", mw.BotDetection, mw.LoginLimit, handler.Login)
		publicAuth.POST("/verify", handler.Verify)
		publicAuth.POST("/logout", handler.Logout)
		publicAuth.POST("/verification/request", mw.BotDetection, mw.VerifyLimit, handler.RequestVerification)
		publicAuth.POST("/verification/confirm", mw.BotDetection, mw.ConfirmLimit, handler.ConfirmVerification)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
	}
}

// Login godoc
// @Summary      Sign in with email
// @Description  Creates the user on first sign-in and returns a 7-day token. The token is also set as an HttpOnly cookie. When SMTP is configured the email must be verified first.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      domain.LoginRequest  true  "Email"
// @Success      200    {object}  response.Response{data=domain.LoginResponse}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authUC.Login(c.Request.Context(), &req)
	if err != nil {
		if logger := security.DefaultLogger(); logger != nil {
			logger.LogLoginFailed(c.Request.Context(), req.Email, c.ClientIP(), c.GetHeader("User-Agent"),
				c.GetString(middleware.RequestIDKey), err.Error())
		}
		_ = c.Error(err)
		return
	}

	if logger := security.DefaultLogger(); logger != nil {
		logger.LogLoginSuccess(c.Request.Context(), res.User.Email, c.ClientIP(), c.GetHeader("User-Agent"),
			c.GetString(middleware.RequestIDKey))
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("auth_token", res.Token, maxAge, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, "Login successful", res)
}

// Logout godoc
// @Summary      Sign out
// @Description  Clears the auth cookie. Bearer tokens stay valid until they expire.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("auth_token", "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// Verify godoc
// @Summary      Verify a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  body      domain.VerifyTokenRequest  true  "Token"
// @Success      200    {object}  response.Response{data=domain.TokenInfo}
// @Failure      401    {object}  response.Response
// @Router       /auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req domain.VerifyTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	info, err := h.authUC.VerifyToken(c.Request.Context(), req.Token)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Token is valid", info)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User retrieved", user)
}

// RequestVerification godoc
// @Summary      Email a verification code
// @Description  Sends a 6-digit code valid for 10 minutes with 3 attempts.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      domain.VerificationRequest  true  "Email"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /auth/verification/request [post]
func (h *AuthHandler) RequestVerification(c *gin.Context) {
	var req domain.VerificationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authUC.RequestVerification(c.Request.Context(), &req); err != nil {
		_ = c.Error(err)
		return
	}
	if logger := security.DefaultLogger(); logger != nil {
		logger.LogVerification(c.Request.Context(), security.EventVerificationSent, req.Email, c.ClientIP(),
			c.GetString(middleware.RequestIDKey), 0)
	}
	response.Success(c, http.StatusOK, "Verification code sent", nil)
}

// ConfirmVerification godoc
// @Summary      Confirm a verification code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      domain.VerificationConfirmRequest  true  "Email and code"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response  "Invalid code; error carries remaining attempts"
// @Failure      429      {object}  response.Response
// @Router       /auth/verification/confirm [post]
func (h *AuthHandler) ConfirmVerification(c *gin.Context) {
	var req domain.VerificationConfirmRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authUC.ConfirmVerification(c.Request.Context(), &req); err != nil {
		h.logVerificationFailure(c, req.Email, err)
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Email verified", gin.H{"email": req.Email, "verified": true})
}

func (h *AuthHandler) logVerificationFailure(c *gin.Context, email string, err error) {
	logger := security.DefaultLogger()
	if logger == nil {
		return
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return
	}
	event := security.EventVerificationFailed
	remaining := 0
	if appErr.Code == http.StatusTooManyRequests {
		event = security.EventVerificationExceeded
	}
	if d, ok := appErr.Details.(map[string]int); ok {
		remaining = d["remaining"]
	}
	logger.LogVerification(c.Request.Context(), event, email, c.ClientIP(), c.GetString(middleware.RequestIDKey), remaining)
}

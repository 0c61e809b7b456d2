package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
	"github.com/ridwanfathin/donation-invoice-service/internal/middleware"
	"github.com/ridwanfathin/donation-invoice-service/internal/model"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
)

const (
	loginStateCookie    = "login_state"
	loginVerifierCookie = "login_verifier"
	loginCookiePath     = "/auth"
	loginCookieTTL      = 10 * time.Minute
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService       service.AuthService
	cookies           CookieConfig
	adminRedirectPath string
	now               func() time.Time
	logger            *slog.Logger
}

// AuthHandlerConfig holds configuration for the auth handler
type AuthHandlerConfig struct {
	Cookies           CookieConfig
	AdminRedirectPath string
	Now               func() time.Time
	Logger            *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, config AuthHandlerConfig) *AuthHandler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	redirect := config.AdminRedirectPath
	if redirect == "" {
		redirect = "/"
	}

	return &AuthHandler{
		authService:       authService,
		cookies:           config.Cookies,
		adminRedirectPath: redirect,
		now:               now,
		logger:            logger.With("component", "auth_handler"),
	}
}

// Login starts the provider login flow
// @Summary Start administrator sign-in
// @Description Redirects to the identity provider with a CSRF state and PKCE challenge
// @Tags auth
// @Success 302 "Redirect to the identity provider"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /auth/login [get]
func (h *AuthHandler) Login(c *gin.Context) {
	flow, redirectURL, err := h.authService.BeginLogin()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	setCookie(c, h.cookies, loginStateCookie, flow.StateToken, loginCookiePath, loginCookieTTL)
	setCookie(c, h.cookies, loginVerifierCookie, flow.Verifier, loginCookiePath, loginCookieTTL)
	c.Redirect(StatusFound, redirectURL)
}

// Callback completes the provider login flow
// @Summary Complete administrator sign-in
// @Description Exchanges the authorization code, applies the administrator check and sets the session cookie. A non-administrator session is signed out at the provider.
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "CSRF state"
// @Success 302 "Redirect to the admin area"
// @Failure 400 {object} model.ErrorResponse "Missing authorization code"
// @Failure 401 {object} model.ErrorResponse "Invalid state or code"
// @Failure 403 {object} model.ErrorResponse "Not the administrator"
// @Router /auth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	stateToken, _ := c.Cookie(loginStateCookie)
	verifier, _ := c.Cookie(loginVerifierCookie)

	clearCookie(c, h.cookies, loginStateCookie, loginCookiePath)
	clearCookie(c, h.cookies, loginVerifierCookie, loginCookiePath)

	if providerErr := c.Query("error"); providerErr != "" {
		h.logger.WarnContext(c.Request.Context(), "identity provider returned an error", "error", providerErr)
		respondWithError(c, StatusUnauthorized, domain.KindUnauthorized, "Sign-in was cancelled or failed")
		return
	}

	flow := service.ResumeLogin(stateToken, verifier)
	result, err := h.authService.CompleteLogin(c.Request.Context(), flow, c.Query("code"), c.Query("state"))
	if err != nil {
		if result != nil && result.State == service.LoginSessionRejected {
			clearCookie(c, h.cookies, middleware.SessionCookieName, "/")
		}
		respondError(c, h.logger, err)
		return
	}

	maxAge := result.ExpiresAt.Sub(h.now())
	setCookie(c, h.cookies, middleware.SessionCookieName, result.SessionCookie, "/", maxAge)

	h.logger.InfoContext(c.Request.Context(), "administrator signed in", "user_id", result.Identity.UserID)
	c.Redirect(StatusFound, h.adminRedirectPath)
}

// Logout ends the session
// @Summary Sign out
// @Description Signs the session out at the identity provider and clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} model.SuccessResponse "Signed out"
// @Failure 500 {object} model.ErrorResponse "Identity provider failure"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cookie, _ := c.Cookie(middleware.SessionCookieName)
	clearCookie(c, h.cookies, middleware.SessionCookieName, "/")

	if err := h.authService.Logout(c.Request.Context(), cookie); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, model.SuccessResponse{Status: http.StatusText(StatusOK), Message: "Signed out"})
}

// Me describes the signed-in caller
// @Summary Current caller
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MeResponse "Caller identity"
// @Failure 401 {object} model.ErrorResponse "Not signed in"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		respondWithError(c, StatusUnauthorized, domain.KindUnauthorized, ErrAuthRequired)
		return
	}

	respondOK(c, model.MeResponse{
		UserID:  identity.UserID,
		Email:   identity.Email,
		IsAdmin: h.authService.IsAdmin(identity.Email),
	})
}

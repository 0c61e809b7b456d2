package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
	"github.com/ridwanfathin/donation-invoice-service/internal/model"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
)

const (
	// SessionCookieName is the cookie that carries the signed admin session
	SessionCookieName = "invoice_session"

	identityKey = "identity"
)

// SessionResolver resolves a caller from a bearer header or session cookie
type SessionResolver interface {
	ResolveBearer(ctx context.Context, authHeader string) (*domain.Identity, error)
	ResolveSession(ctx context.Context, cookie string) (*domain.Identity, error)
}

// Auth requires an authenticated caller.
// The Authorization header wins; the session cookie is the fallback for browser requests.
func Auth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolve(c, resolver)
		if err != nil || identity == nil {
			abort(c, http.StatusUnauthorized, domain.KindUnauthorized, "Authentication required")
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuth resolves the caller when credentials are present and never rejects
func OptionalAuth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := resolve(c, resolver); err == nil && identity != nil {
			setIdentity(c, identity)
		}
		c.Next()
	}
}

// RequireAdmin rejects any caller the authorizer does not accept.
// It must run after Auth.
func RequireAdmin(authorizer *service.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if identity == nil {
			abort(c, http.StatusUnauthorized, domain.KindUnauthorized, "Authentication required")
			return
		}
		if !authorizer.IsAuthorized(identity.Email) {
			abort(c, http.StatusForbidden, domain.KindForbidden, "Access denied")
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity set by Auth or OptionalAuth, or nil
func IdentityFrom(c *gin.Context) *domain.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*domain.Identity)
	return identity
}

func resolve(c *gin.Context, resolver SessionResolver) (*domain.Identity, error) {
	ctx := c.Request.Context()

	if header := c.GetHeader("Authorization"); header != "" {
		return resolver.ResolveBearer(ctx, header)
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie == "" {
		return nil, nil
	}
	return resolver.ResolveSession(ctx, cookie)
}

func setIdentity(c *gin.Context, identity *domain.Identity) {
	c.Set(identityKey, identity)
	c.Set("userID", identity.UserID)
	c.Set("userEmail", identity.Email)
}

func abort(c *gin.Context, status int, kind domain.Kind, message string) {
	c.AbortWithStatusJSON(status, errorBody(status, message, kind.String()))
}

func errorBody(status int, message, code string) model.ErrorResponse {
	return model.ErrorResponse{
		Status:  http.StatusText(status),
		Message: message,
		Error:   code,
	}
}

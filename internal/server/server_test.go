package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/donation-invoice-service/internal/config"
	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
	"github.com/ridwanfathin/donation-invoice-service/internal/handler"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fixedSessions resolves every bearer token to one identity
type fixedSessions struct {
	email string
}

func (f fixedSessions) ResolveBearer(context.Context, string) (*domain.Identity, error) {
	return &domain.Identity{UserID: "u-1", Email: f.email}, nil
}

func (f fixedSessions) ResolveSession(context.Context, string) (*domain.Identity, error) {
	return &domain.Identity{UserID: "u-1", Email: f.email}, nil
}

func newTestServer(t *testing.T, email string) *Server {
	t.Helper()
	cfg := &config.Config{
		Port:           0,
		RequestTimeout: 5 * time.Second,
		MaxRequestSize: "1MB",
		CORSOrigins:    []string{"https://sahyog.org"},
	}
	srv, err := NewServer(cfg, Dependencies{
		InvoiceHandler: handler.NewInvoiceHandler(nil, nil),
		AuthHandler:    handler.NewAuthHandler(nil, handler.AuthHandlerConfig{}),
		PublicHandler:  handler.NewPublicHandler(nil, nil),
		Sessions:       fixedSessions{email: email},
		Authorizer:     service.NewAuthorizer("admin@sahyog.org"),
	}, nil)
	require.NoError(t, err)
	return srv
}

func TestNewServer_InvalidBodyLimit(t *testing.T) {
	_, err := NewServer(&config.Config{MaxRequestSize: "lots"}, Dependencies{}, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "admin@sahyog.org")

	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAdminRoutes_RequireCredentials(t *testing.T) {
	srv := newTestServer(t, "admin@sahyog.org")

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/invoices"},
		{http.MethodPost, "/invoices"},
		{http.MethodGet, "/invoices/abc/download"},
		{http.MethodGet, "/auth/me"},
	} {
		rec := httptest.NewRecorder()
		srv.GetRouter().ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestAdminRoutes_ForbidOtherIdentities(t *testing.T) {
	srv := newTestServer(t, "volunteer@sahyog.org")

	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	srv := newTestServer(t, "admin@sahyog.org")

	req := httptest.NewRequest(http.MethodOptions, "/contact", nil)
	req.Header.Set("Origin", "https://sahyog.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://sahyog.org", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, "admin@sahyog.org")

	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&Config{
		BaseURL:     srv.URL,
		AnonKey:     "anon-key",
		RedirectURL: "https://site.example/auth/callback",
	})
}

func TestAuthorizeURL(t *testing.T) {
	c := NewClient(&Config{
		BaseURL:     "https://project.supabase.co/",
		Provider:    "google",
		RedirectURL: "https://site.example/auth/callback",
	})

	raw := c.AuthorizeURL("state-1", "challenge-1")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/auth/v1/authorize", u.Path)
	assert.Equal(t, "google", u.Query().Get("provider"))
	assert.Equal(t, "challenge-1", u.Query().Get("code_challenge"))
	assert.Equal(t, "s256", u.Query().Get("code_challenge_method"))

	redirect, err := url.Parse(u.Query().Get("redirect_to"))
	require.NoError(t, err)
	assert.Equal(t, "state-1", redirect.Query().Get("state"))
}

func TestExchangeCode(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour).Unix()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "code-1", body["auth_code"])
		assert.Equal(t, "verifier-1", body["code_verifier"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access-1",
			"token_type":    "bearer",
			"expires_at":    expiresAt,
			"refresh_token": "refresh-1",
			"user": map[string]string{
				"id":                 "u1",
				"email":              "admin@sahyog.org",
				"email_confirmed_at": "2024-01-10T08:00:00.123456Z",
			},
		})
	})

	session, err := c.ExchangeCode(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", session.AccessToken)
	assert.Equal(t, "admin@sahyog.org", session.Identity.Email)
	assert.Equal(t, expiresAt, session.ExpiresAt.Unix())
}

func TestExchangeCode_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	})

	_, err := c.ExchangeCode(context.Background(), "bad", "verifier")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
}

func TestGetUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":                 "u1",
			"email":              "admin@sahyog.org",
			"email_confirmed_at": "2024-01-10T08:00:00Z",
		})
	})

	id, err := c.GetUser(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "admin@sahyog.org", id.Email)

	_, err = c.GetUser(context.Background(), "expired")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
}

func TestGetUser_UnverifiedEmail(t *testing.T) {
	tests := []struct {
		name string
		user map[string]interface{}
		ok   bool
	}{
		{"never confirmed", map[string]interface{}{"id": "u1", "email": "admin@sahyog.org", "email_confirmed_at": nil}, false},
		{"field absent", map[string]interface{}{"id": "u1", "email": "admin@sahyog.org"}, false},
		{"confirmed_at only", map[string]interface{}{"id": "u1", "email": "admin@sahyog.org", "confirmed_at": "2024-01-10T08:00:00Z"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tt.user)
			})

			id, err := c.GetUser(context.Background(), "token")
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, "admin@sahyog.org", id.Email)
				return
			}
			assert.Nil(t, id)
			assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
		})
	}
}

func TestExchangeCode_UnverifiedEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-1",
			"token_type":   "bearer",
			"expires_at":   time.Now().Add(time.Hour).Unix(),
			"user":         map[string]interface{}{"id": "u1", "email": "admin@sahyog.org", "email_confirmed_at": nil},
		})
	})

	session, err := c.ExchangeCode(context.Background(), "code-1", "verifier-1")
	assert.Nil(t, session)
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
}

func TestGetUser_ProviderDown(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetUser(context.Background(), "token")
	assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
}

func TestSignOut(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.SignOut(context.Background(), "access-1"))
	assert.True(t, called)
}

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
)

// Client talks to the Supabase auth (GoTrue) HTTP API
type Client struct {
	baseURL     string
	anonKey     string
	provider    string
	redirectURL string
	httpClient  *http.Client
}

// Config holds configuration for the identity client
type Config struct {
	BaseURL     string
	AnonKey     string
	Provider    string
	RedirectURL string
	Timeout     time.Duration
}

// NewClient creates a new identity provider client
func NewClient(config *Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	provider := config.Provider
	if provider == "" {
		provider = "google"
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		anonKey:     config.AnonKey,
		provider:    provider,
		redirectURL: config.RedirectURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type userResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	EmailConfirmedAt string `json:"email_confirmed_at"`
	ConfirmedAt      string `json:"confirmed_at"`
}

// verifiedIdentity accepts only a user whose email the provider has confirmed
func (u userResponse) verifiedIdentity(op string) (*domain.Identity, error) {
	if u.Email == "" {
		return nil, domain.NewError(domain.KindUnauthorized, op, errors.New("identity has no email"))
	}
	if u.EmailConfirmedAt == "" && u.ConfirmedAt == "" {
		return nil, domain.NewError(domain.KindUnauthorized, op, errors.New("identity email is not verified"))
	}
	return &domain.Identity{UserID: u.ID, Email: u.Email}, nil
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

// AuthorizeURL builds the provider redirect for the PKCE flow
func (c *Client) AuthorizeURL(state, codeChallenge string) string {
	redirect := c.redirectURL
	if state != "" {
		redirect = appendQuery(redirect, "state", state)
	}

	q := url.Values{}
	q.Set("provider", c.provider)
	q.Set("redirect_to", redirect)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "s256")

	return fmt.Sprintf("%s/auth/v1/authorize?%s", c.baseURL, q.Encode())
}

// ExchangeCode trades an authorization code and verifier for a session
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.ProviderSession, error) {
	const op = "identity.exchange_code"

	payload := map[string]string{
		"auth_code":     code,
		"code_verifier": codeVerifier,
	}

	var token tokenResponse
	if err := c.do(ctx, op, http.MethodPost, "/auth/v1/token?grant_type=pkce", "", payload, &token); err != nil {
		return nil, err
	}

	oauthToken := &oauth2.Token{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
	}
	switch {
	case token.ExpiresAt > 0:
		oauthToken.Expiry = time.Unix(token.ExpiresAt, 0)
	case token.ExpiresIn > 0:
		oauthToken.Expiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	if !oauthToken.Valid() {
		return nil, domain.NewError(domain.KindUnauthorized, op, errors.New("provider returned an unusable token"))
	}

	identity, err := token.User.verifiedIdentity(op)
	if err != nil {
		return nil, err
	}
	identity.ExpiresAt = oauthToken.Expiry

	return &domain.ProviderSession{
		AccessToken:  oauthToken.AccessToken,
		RefreshToken: oauthToken.RefreshToken,
		ExpiresAt:    oauthToken.Expiry,
		Identity:     *identity,
	}, nil
}

// GetUser resolves an access token to its identity
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	const op = "identity.get_user"

	var user userResponse
	if err := c.do(ctx, op, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return user.verifiedIdentity(op)
}

// SignOut revokes the session behind accessToken
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, "identity.sign_out", http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return domain.NewError(domain.KindInternal, op, fmt.Errorf("failed to marshal request: %w", err))
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.NewError(domain.KindInternal, op, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("apikey", c.anonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewError(domain.KindUpstream, op, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewError(domain.KindUpstream, op, fmt.Errorf("failed to read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.NewError(domain.KindUnauthorized, op, fmt.Errorf("provider rejected credentials (status %d)", resp.StatusCode))
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return domain.NewError(domain.KindUnauthorized, op, fmt.Errorf("provider rejected request (status %d): %s", resp.StatusCode, string(respBody)))
	case resp.StatusCode >= 300:
		return domain.NewError(domain.KindUpstream, op, fmt.Errorf("provider error (status %d): %s", resp.StatusCode, string(respBody)))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return domain.NewError(domain.KindUpstream, op, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func appendQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

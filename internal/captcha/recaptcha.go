package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const siteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Verifier checks a CAPTCHA response token
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// RecaptchaClient verifies tokens with Google reCAPTCHA
type RecaptchaClient struct {
	verifyURL  string
	secret     string
	httpClient *http.Client
}

// Config holds configuration for the reCAPTCHA client
type Config struct {
	VerifyURL string
	Secret    string
	Timeout   time.Duration
}

// NewRecaptchaClient creates a new reCAPTCHA client
func NewRecaptchaClient(config *Config) *RecaptchaClient {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	verifyURL := config.VerifyURL
	if verifyURL == "" {
		verifyURL = siteVerifyURL
	}

	return &RecaptchaClient{
		verifyURL: verifyURL,
		secret:    config.Secret,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify reports whether token is a valid solve. An empty token is never valid.
func (c *RecaptchaClient) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}
	if c.secret == "" {
		return false, fmt.Errorf("captcha is not configured")
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha service returned status %d", resp.StatusCode)
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Success, nil
}

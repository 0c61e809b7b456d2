package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
)

const sessionIssuer = "donation-invoice-service"

// IdentityProvider is the external authentication service
type IdentityProvider interface {
	// AuthorizeURL returns the provider URL the browser is redirected to
	AuthorizeURL(state, codeChallenge string) string

	// ExchangeCode trades an authorization code for a provider session
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.ProviderSession, error)

	// GetUser resolves an access token to the identity it belongs to
	GetUser(ctx context.Context, accessToken string) (*domain.Identity, error)

	// SignOut revokes the provider session behind accessToken
	SignOut(ctx context.Context, accessToken string) error
}

// AuthService resolves callers and drives the browser login flow
type AuthService interface {
	// ResolveBearer resolves an "Authorization: Bearer <token>" header value
	ResolveBearer(ctx context.Context, authHeader string) (*domain.Identity, error)

	// ResolveSession resolves a session cookie issued by CompleteLogin
	ResolveSession(ctx context.Context, cookie string) (*domain.Identity, error)

	// BeginLogin starts a login and returns the flow plus the provider redirect URL
	BeginLogin() (*LoginFlow, string, error)

	// CompleteLogin finishes a login from the provider callback
	CompleteLogin(ctx context.Context, flow *LoginFlow, code, state string) (*LoginResult, error)

	// Logout signs the session out at the provider
	Logout(ctx context.Context, cookie string) error

	// IsAdmin applies the authorization predicate
	IsAdmin(email string) bool
}

// LoginState is a step of the browser login state machine
type LoginState int

const (
	LoginAnonymous LoginState = iota
	LoginPendingProviderRedirect
	LoginPendingCallbackExchange
	LoginSessionEstablished
	LoginSessionRejected
)

func (s LoginState) String() string {
	switch s {
	case LoginAnonymous:
		return "anonymous"
	case LoginPendingProviderRedirect:
		return "pending_provider_redirect"
	case LoginPendingCallbackExchange:
		return "pending_callback_exchange"
	case LoginSessionEstablished:
		return "session_established"
	case LoginSessionRejected:
		return "session_rejected"
	default:
		return "unknown"
	}
}

var loginTransitions = map[LoginState][]LoginState{
	LoginAnonymous:               {LoginPendingProviderRedirect},
	LoginPendingProviderRedirect: {LoginPendingCallbackExchange},
	LoginPendingCallbackExchange: {LoginSessionEstablished, LoginSessionRejected},
}

// ErrInvalidTransition is returned when a login step is taken out of order
var ErrInvalidTransition = errors.New("invalid login state transition")

// LoginFlow carries one login attempt across the provider redirect.
// StateToken and Verifier are round-tripped through short-lived cookies.
type LoginFlow struct {
	State      LoginState
	StateToken string
	Verifier   string
}

// ResumeLogin rebuilds a flow that is waiting for the provider callback
func ResumeLogin(stateToken, verifier string) *LoginFlow {
	return &LoginFlow{
		State:      LoginPendingProviderRedirect,
		StateToken: stateToken,
		Verifier:   verifier,
	}
}

func (f *LoginFlow) transition(to LoginState) error {
	for _, next := range loginTransitions[f.State] {
		if next == to {
			f.State = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.State, to)
}

// LoginResult is the outcome of CompleteLogin
type LoginResult struct {
	State         LoginState
	Identity      *domain.Identity
	SessionCookie string
	ExpiresAt     time.Time
}

// sessionClaims is the signed payload of the session cookie
type sessionClaims struct {
	Email         string `json:"email"`
	ProviderToken string `json:"pat"`
	jwt.RegisteredClaims
}

// authService implements AuthService
type authService struct {
	provider   IdentityProvider
	authorizer *Authorizer
	secret     []byte
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// AuthServiceConfig holds configuration for auth service
type AuthServiceConfig struct {
	Provider      IdentityProvider
	Authorizer    *Authorizer
	SessionSecret string
	SessionTTL    time.Duration
	Logger        *slog.Logger
	Now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(config AuthServiceConfig) AuthService {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	ttl := config.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &authService{
		provider:   config.Provider,
		authorizer: config.Authorizer,
		secret:     []byte(config.SessionSecret),
		sessionTTL: ttl,
		logger:     logger.With("component", "auth"),
		now:        now,
	}
}

// ResolveBearer validates the header shape before any provider call
func (s *authService) ResolveBearer(ctx context.Context, authHeader string) (*domain.Identity, error) {
	const op = "resolve_bearer"

	if authHeader == "" {
		return nil, domain.NewError(domain.KindUnauthorized, op, errors.New("authorization header is required"))
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return nil, domain.NewError(domain.KindUnauthorized, op, errors.New("expected 'Bearer <token>'"))
	}

	return s.resolveToken(ctx, op, strings.TrimSpace(parts[1]))
}

// ResolveSession verifies the cookie signature locally, then asks the provider
func (s *authService) ResolveSession(ctx context.Context, cookie string) (*domain.Identity, error) {
	const op = "resolve_session"

	if cookie == "" {
		return nil, domain.NewError(domain.KindUnauthorized, op, errors.New("no session"))
	}

	claims, err := s.parseSession(cookie)
	if err != nil {
		return nil, domain.NewError(domain.KindUnauthorized, op, err)
	}

	identity, err := s.resolveToken(ctx, op, claims.ProviderToken)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

func (s *authService) resolveToken(ctx context.Context, op, token string) (*domain.Identity, error) {
	identity, err := s.provider.GetUser(ctx, token)
	if err != nil {
		s.logger.WarnContext(ctx, "identity provider rejected token", "op", op, "error", err)
		return nil, domain.NewError(domain.KindUnauthorized, op, err)
	}
	if identity == nil || identity.Email == "" {
		return nil, domain.NewError(domain.KindUnauthorized, op, errors.New("identity has no verified email"))
	}
	return identity, nil
}

// BeginLogin creates the CSRF state token and PKCE verifier
func (s *authService) BeginLogin() (*LoginFlow, string, error) {
	flow := &LoginFlow{
		State:      LoginAnonymous,
		StateToken: uuid.NewString(),
		Verifier:   oauth2.GenerateVerifier(),
	}
	if err := flow.transition(LoginPendingProviderRedirect); err != nil {
		return nil, "", err
	}

	redirectURL := s.provider.AuthorizeURL(flow.StateToken, oauth2.S256ChallengeFromVerifier(flow.Verifier))
	return flow, redirectURL, nil
}

// CompleteLogin exchanges the code and applies the authorization predicate.
// A non-admin identity gets its fresh provider session signed out and no cookie.
func (s *authService) CompleteLogin(ctx context.Context, flow *LoginFlow, code, state string) (*LoginResult, error) {
	const op = "complete_login"

	if flow == nil || flow.StateToken == "" || flow.Verifier == "" {
		return nil, domain.NewError(domain.KindUnauthorized, op, errors.New("no login in progress"))
	}
	if state == "" || state != flow.StateToken {
		return nil, domain.NewError(domain.KindUnauthorized, op, errors.New("state mismatch"))
	}
	if code == "" {
		return nil, domain.NewValidationError(op, map[string]string{"code": "authorization code is required"})
	}

	if err := flow.transition(LoginPendingCallbackExchange); err != nil {
		return nil, domain.NewError(domain.KindUnauthorized, op, err)
	}

	session, err := s.provider.ExchangeCode(ctx, code, flow.Verifier)
	if err != nil {
		s.logger.WarnContext(ctx, "code exchange failed", "error", err)
		return nil, domain.NewError(domain.KindUnauthorized, op, err)
	}

	if !s.authorizer.IsAuthorized(session.Identity.Email) {
		if err := flow.transition(LoginSessionRejected); err != nil {
			return nil, domain.NewError(domain.KindInternal, op, err)
		}
		if err := s.provider.SignOut(ctx, session.AccessToken); err != nil {
			s.logger.ErrorContext(ctx, "failed to sign out rejected session", "error", err)
		}
		s.logger.WarnContext(ctx, "login rejected for non-admin identity")
		return &LoginResult{State: flow.State}, domain.NewError(domain.KindForbidden, op, errors.New("identity is not the administrator"))
	}

	if err := flow.transition(LoginSessionEstablished); err != nil {
		return nil, domain.NewError(domain.KindInternal, op, err)
	}

	expiresAt := s.now().Add(s.sessionTTL)
	if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(expiresAt) {
		expiresAt = session.ExpiresAt
	}

	cookie, err := s.signSession(session, expiresAt)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, op, err)
	}

	identity := session.Identity
	identity.ExpiresAt = expiresAt

	return &LoginResult{
		State:         flow.State,
		Identity:      &identity,
		SessionCookie: cookie,
		ExpiresAt:     expiresAt,
	}, nil
}

// Logout signs out at the provider; an unreadable cookie is nothing to sign out
func (s *authService) Logout(ctx context.Context, cookie string) error {
	if cookie == "" {
		return nil
	}
	claims, err := s.parseSession(cookie)
	if err != nil {
		return nil
	}
	if err := s.provider.SignOut(ctx, claims.ProviderToken); err != nil {
		return domain.NewError(domain.KindUpstream, "logout", err)
	}
	return nil
}

// IsAdmin applies the authorization predicate
func (s *authService) IsAdmin(email string) bool {
	return s.authorizer.IsAuthorized(email)
}

func (s *authService) signSession(session *domain.ProviderSession, expiresAt time.Time) (string, error) {
	now := s.now()
	claims := &sessionClaims{
		Email:         session.Identity.Email,
		ProviderToken: session.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   session.Identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

func (s *authService) parseSession(cookie string) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(cookie, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.ProviderToken == "" {
		return nil, errors.New("invalid session")
	}
	return claims, nil
}

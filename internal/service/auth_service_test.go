package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
)

const (
	testAdmin  = "admin@sahyog.org"
	testSecret = "0123456789abcdef0123456789abcdef"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestAuthService(p *mockProvider) AuthService {
	return NewAuthService(AuthServiceConfig{
		Provider:      p,
		Authorizer:    NewAuthorizer(testAdmin),
		SessionSecret: testSecret,
		SessionTTL:    12 * time.Hour,
		Now:           fixedClock(testNow),
	})
}

func TestResolveBearer_MalformedHeaderSkipsProvider(t *testing.T) {
	p := &mockProvider{}
	svc := newTestAuthService(p)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "bearer abc", "abc"} {
		_, err := svc.ResolveBearer(context.Background(), header)
		assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err), "header %q", header)
	}

	p.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestResolveBearer_ProviderRejects(t *testing.T) {
	p := &mockProvider{}
	p.On("GetUser", mock.Anything, "expired").Return(nil, errors.New("token expired"))
	svc := newTestAuthService(p)

	_, err := svc.ResolveBearer(context.Background(), "Bearer expired")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	p.AssertNumberOfCalls(t, "GetUser", 1)
}

func TestResolveBearer_Success(t *testing.T) {
	p := &mockProvider{}
	p.On("GetUser", mock.Anything, "good").Return(&domain.Identity{UserID: "u1", Email: testAdmin}, nil)
	svc := newTestAuthService(p)

	id, err := svc.ResolveBearer(context.Background(), "Bearer good")
	require.NoError(t, err)
	assert.Equal(t, testAdmin, id.Email)
}

func TestBeginLogin(t *testing.T) {
	p := &mockProvider{}
	p.On("AuthorizeURL", mock.Anything, mock.Anything).Return("https://idp.example/authorize")
	svc := newTestAuthService(p)

	flow, redirect, err := svc.BeginLogin()
	require.NoError(t, err)

	assert.Equal(t, LoginPendingProviderRedirect, flow.State)
	assert.NotEmpty(t, flow.StateToken)
	assert.NotEmpty(t, flow.Verifier)
	assert.Equal(t, "https://idp.example/authorize", redirect)

	call := p.Calls[0]
	assert.Equal(t, flow.StateToken, call.Arguments.String(0))
	assert.NotEqual(t, flow.Verifier, call.Arguments.String(1))
}

func TestCompleteLogin_AdminEstablishesSession(t *testing.T) {
	p := &mockProvider{}
	p.On("ExchangeCode", mock.Anything, "code-1", "verifier-1").Return(&domain.ProviderSession{
		AccessToken: "access-1",
		ExpiresAt:   testNow.Add(time.Hour),
		Identity:    domain.Identity{UserID: "u1", Email: testAdmin},
	}, nil)
	p.On("GetUser", mock.Anything, "access-1").Return(&domain.Identity{UserID: "u1", Email: testAdmin}, nil)
	svc := newTestAuthService(p)

	result, err := svc.CompleteLogin(context.Background(), ResumeLogin("state-1", "verifier-1"), "code-1", "state-1")
	require.NoError(t, err)

	assert.Equal(t, LoginSessionEstablished, result.State)
	assert.NotEmpty(t, result.SessionCookie)
	assert.Equal(t, testNow.Add(time.Hour), result.ExpiresAt)
	p.AssertNotCalled(t, "SignOut", mock.Anything, mock.Anything)

	id, err := svc.ResolveSession(context.Background(), result.SessionCookie)
	require.NoError(t, err)
	assert.Equal(t, testAdmin, id.Email)
}

func TestCompleteLogin_NonAdminIsSignedOut(t *testing.T) {
	p := &mockProvider{}
	p.On("ExchangeCode", mock.Anything, "code-2", "verifier-2").Return(&domain.ProviderSession{
		AccessToken: "access-2",
		Identity:    domain.Identity{UserID: "u2", Email: "volunteer@sahyog.org"},
	}, nil)
	p.On("SignOut", mock.Anything, "access-2").Return(nil)
	svc := newTestAuthService(p)

	result, err := svc.CompleteLogin(context.Background(), ResumeLogin("state-2", "verifier-2"), "code-2", "state-2")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	require.NotNil(t, result)
	assert.Equal(t, LoginSessionRejected, result.State)
	assert.Empty(t, result.SessionCookie)
	p.AssertNumberOfCalls(t, "SignOut", 1)
}

func TestCompleteLogin_StateMismatch(t *testing.T) {
	p := &mockProvider{}
	svc := newTestAuthService(p)

	_, err := svc.CompleteLogin(context.Background(), ResumeLogin("state-3", "verifier-3"), "code-3", "forged")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	p.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteLogin_ReplayedFlowRejected(t *testing.T) {
	p := &mockProvider{}
	svc := newTestAuthService(p)

	flow := &LoginFlow{State: LoginSessionEstablished, StateToken: "s", Verifier: "v"}
	_, err := svc.CompleteLogin(context.Background(), flow, "code", "s")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResolveSession_RejectsTamperedAndExpired(t *testing.T) {
	p := &mockProvider{}
	p.On("ExchangeCode", mock.Anything, mock.Anything, mock.Anything).Return(&domain.ProviderSession{
		AccessToken: "access-4",
		Identity:    domain.Identity{Email: testAdmin},
	}, nil)
	svc := newTestAuthService(p)

	result, err := svc.CompleteLogin(context.Background(), ResumeLogin("s", "v"), "c", "s")
	require.NoError(t, err)

	_, err = svc.ResolveSession(context.Background(), result.SessionCookie+"x")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	later := NewAuthService(AuthServiceConfig{
		Provider:      p,
		Authorizer:    NewAuthorizer(testAdmin),
		SessionSecret: testSecret,
		Now:           fixedClock(testNow.Add(13 * time.Hour)),
	})
	_, err = later.ResolveSession(context.Background(), result.SessionCookie)
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	p.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestLogout(t *testing.T) {
	p := &mockProvider{}
	p.On("ExchangeCode", mock.Anything, mock.Anything, mock.Anything).Return(&domain.ProviderSession{
		AccessToken: "access-5",
		Identity:    domain.Identity{Email: testAdmin},
	}, nil)
	p.On("SignOut", mock.Anything, "access-5").Return(nil)
	svc := newTestAuthService(p)

	result, err := svc.CompleteLogin(context.Background(), ResumeLogin("s", "v"), "c", "s")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.SessionCookie))
	require.NoError(t, svc.Logout(context.Background(), "garbage"))
	p.AssertNumberOfCalls(t, "SignOut", 1)
}

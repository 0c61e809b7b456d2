package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
)

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) Create(ctx context.Context, identity *domain.Identity, input service.CreateInvoiceInput) (*service.CreateInvoiceResult, error) {
	args := m.Called(ctx, identity, input)
	if r := args.Get(0); r != nil {
		return r.(*service.CreateInvoiceResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceService) FetchOrRegenerate(ctx context.Context, serialNumber string, purpose service.DocumentPurpose) (*service.DocumentLink, error) {
	args := m.Called(ctx, serialNumber, purpose)
	if r := args.Get(0); r != nil {
		return r.(*service.DocumentLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceService) GetForAdmin(ctx context.Context, identity *domain.Identity, id string, purpose service.DocumentPurpose) (*service.InvoiceLink, error) {
	args := m.Called(ctx, identity, id, purpose)
	if r := args.Get(0); r != nil {
		return r.(*service.InvoiceLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceService) Download(ctx context.Context, serialNumber string) (*service.Document, error) {
	args := m.Called(ctx, serialNumber)
	if r := args.Get(0); r != nil {
		return r.(*service.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceService) List(ctx context.Context, identity *domain.Identity) ([]*domain.InvoiceRecord, error) {
	args := m.Called(ctx, identity)
	if r := args.Get(0); r != nil {
		return r.([]*domain.InvoiceRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) ResolveBearer(ctx context.Context, authHeader string) (*domain.Identity, error) {
	args := m.Called(ctx, authHeader)
	if r := args.Get(0); r != nil {
		return r.(*domain.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) ResolveSession(ctx context.Context, cookie string) (*domain.Identity, error) {
	args := m.Called(ctx, cookie)
	if r := args.Get(0); r != nil {
		return r.(*domain.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) BeginLogin() (*service.LoginFlow, string, error) {
	args := m.Called()
	if r := args.Get(0); r != nil {
		return r.(*service.LoginFlow), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *mockAuthService) CompleteLogin(ctx context.Context, flow *service.LoginFlow, code, state string) (*service.LoginResult, error) {
	args := m.Called(ctx, flow, code, state)
	if r := args.Get(0); r != nil {
		return r.(*service.LoginResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, cookie string) error {
	args := m.Called(ctx, cookie)
	return args.Error(0)
}

func (m *mockAuthService) IsAdmin(email string) bool {
	args := m.Called(email)
	return args.Bool(0)
}

type mockOutreachService struct {
	mock.Mock
}

func (m *mockOutreachService) SubmitContact(ctx context.Context, input service.ContactInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *mockOutreachService) SubmitJoin(ctx context.Context, input service.JoinInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *mockOutreachService) CreateDonationOrder(ctx context.Context, input service.DonationInput) (*service.DonationOrder, error) {
	args := m.Called(ctx, input)
	if r := args.Get(0); r != nil {
		return r.(*service.DonationOrder), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubSessions resolves any bearer token to the given identity
type stubSessions struct {
	identity *domain.Identity
}

func (s stubSessions) ResolveBearer(context.Context, string) (*domain.Identity, error) {
	return s.identity, nil
}

func (s stubSessions) ResolveSession(context.Context, string) (*domain.Identity, error) {
	return s.identity, nil
}

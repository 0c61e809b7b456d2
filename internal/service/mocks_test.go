package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
	"github.com/ridwanfathin/donation-invoice-service/internal/notify"
	"github.com/ridwanfathin/donation-invoice-service/internal/payment"
	"github.com/ridwanfathin/donation-invoice-service/internal/storage"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) AuthorizeURL(state, codeChallenge string) string {
	args := m.Called(state, codeChallenge)
	return args.String(0)
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.ProviderSession, error) {
	args := m.Called(ctx, code, codeVerifier)
	if s := args.Get(0); s != nil {
		return s.(*domain.ProviderSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	args := m.Called(ctx, accessToken)
	if id := args.Get(0); id != nil {
		return id.(*domain.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type mockRecords struct {
	mock.Mock
}

func (m *mockRecords) Create(ctx context.Context, invoice *domain.InvoiceRecord) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockRecords) GetByID(ctx context.Context, id string) (*domain.InvoiceRecord, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.InvoiceRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecords) GetBySerialNumber(ctx context.Context, serialNumber string) (*domain.InvoiceRecord, error) {
	args := m.Called(ctx, serialNumber)
	if r := args.Get(0); r != nil {
		return r.(*domain.InvoiceRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecords) SerialNumberExists(ctx context.Context, serialNumber string) (bool, error) {
	args := m.Called(ctx, serialNumber)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecords) List(ctx context.Context) ([]*domain.InvoiceRecord, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]*domain.InvoiceRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockBlobs struct {
	mock.Mock
}

func (m *mockBlobs) Put(ctx context.Context, key string, data []byte, opts storage.PutOptions) error {
	args := m.Called(ctx, key, data, opts)
	return args.Error(0)
}

func (m *mockBlobs) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBlobs) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(meta domain.InvoiceMetadata) ([]byte, error) {
	args := m.Called(meta)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg notify.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type mockCaptcha struct {
	mock.Mock
}

func (m *mockCaptcha) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	args := m.Called(ctx, token, remoteIP)
	return args.Bool(0), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.Order, error) {
	args := m.Called(ctx, req)
	if o := args.Get(0); o != nil {
		return o.(*payment.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) KeyID() string {
	return "rzp_test_key"
}

// sequenceSerials returns the given serials in order, then repeats the last
type sequenceSerials struct {
	serials []string
	next    int
}

func (s *sequenceSerials) Next() string {
	serial := s.serials[s.next]
	if s.next < len(s.serials)-1 {
		s.next++
	}
	return serial
}

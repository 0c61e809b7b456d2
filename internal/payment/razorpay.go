package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// OrderRequest is a payment order to create, amount in the smallest currency unit
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is a payment order created by the gateway
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// Gateway creates payment orders
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	KeyID() string
}

// RazorpayClient creates orders through the Razorpay SDK
type RazorpayClient struct {
	keyID     string
	keySecret string
	sdk       *razorpay.Client
}

// Config holds configuration for the Razorpay client
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// NewRazorpayClient creates a new Razorpay client
func NewRazorpayClient(config *Config) *RazorpayClient {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	sdk := razorpay.NewClient(config.KeyID, config.KeySecret)
	sdk.Order.Request.HTTPClient = &http.Client{Timeout: config.Timeout}
	if config.BaseURL != "" {
		sdk.Order.Request.BaseURL = config.BaseURL
	}

	return &RazorpayClient{
		keyID:     config.KeyID,
		keySecret: config.KeySecret,
		sdk:       sdk,
	}
}

// KeyID returns the public key the browser checkout needs
func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

// CreateOrder creates an order. The SDK takes no context, so ctx is only
// checked before the call; the client timeout bounds the request itself.
func (c *RazorpayClient) CreateOrder(ctx context.Context, order OrderRequest) (*Order, error) {
	if c.keyID == "" || c.keySecret == "" {
		return nil, fmt.Errorf("payment gateway is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":   order.Amount,
		"currency": order.Currency,
		"receipt":  order.Receipt,
	}
	if len(order.Notes) > 0 {
		data["notes"] = order.Notes
	}

	body, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("payment gateway error: %w", err)
	}

	created := &Order{
		ID:       stringField(body, "id"),
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
		Status:   stringField(body, "status"),
	}
	if amount, ok := body["amount"].(float64); ok {
		created.Amount = int64(amount)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("payment gateway returned an order without an id")
	}

	return created, nil
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

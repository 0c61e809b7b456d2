package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// Attachment is a file sent with an email
type Attachment struct {
	Name    string
	Content []byte
}

// Message is a transactional email
type Message struct {
	ToName      string
	ToEmail     string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

// Sender delivers transactional email
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// BrevoClient sends email through the Brevo transactional API
type BrevoClient struct {
	apiKey      string
	senderName  string
	senderEmail string
	api         *brevo.APIClient
}

// Config holds configuration for the Brevo client
type Config struct {
	BaseURL     string
	APIKey      string
	SenderName  string
	SenderEmail string
	Timeout     time.Duration
}

// NewBrevoClient creates a new Brevo client
func NewBrevoClient(config *Config) *BrevoClient {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", config.APIKey)
	cfg.HTTPClient = &http.Client{Timeout: config.Timeout}
	if config.BaseURL != "" {
		cfg.BasePath = config.BaseURL
	}

	return &BrevoClient{
		apiKey:      config.APIKey,
		senderName:  config.SenderName,
		senderEmail: config.SenderEmail,
		api:         brevo.NewAPIClient(cfg),
	}
}

// Send delivers msg. Attachments are base64 encoded inline.
func (c *BrevoClient) Send(ctx context.Context, msg Message) error {
	if c.apiKey == "" {
		return fmt.Errorf("email provider is not configured")
	}
	if msg.ToEmail == "" {
		return fmt.Errorf("recipient email is required")
	}

	email := brevo.SendSmtpEmail{
		Sender:      &brevo.SendSmtpEmailSender{Name: c.senderName, Email: c.senderEmail},
		To:          []brevo.SendSmtpEmailTo{{Name: msg.ToName, Email: msg.ToEmail}},
		Subject:     msg.Subject,
		HtmlContent: msg.HTMLBody,
		TextContent: msg.TextBody,
	}
	if msg.ReplyTo != "" {
		email.ReplyTo = &brevo.SendSmtpEmailReplyTo{Email: msg.ReplyTo}
	}
	for _, a := range msg.Attachments {
		email.Attachment = append(email.Attachment, brevo.SendSmtpEmailAttachment{
			Name:    a.Name,
			Content: base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	_, resp, err := c.api.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("email provider error (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

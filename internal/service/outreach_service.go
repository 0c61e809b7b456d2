package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
	"github.com/ridwanfathin/donation-invoice-service/internal/metrics"
	"github.com/ridwanfathin/donation-invoice-service/internal/notify"
	"github.com/ridwanfathin/donation-invoice-service/internal/payment"
)

const donationCurrency = "INR"

// ContactInput is a message from the public contact form
type ContactInput struct {
	Name         string
	Email        string
	Subject      string
	Message      string
	CaptchaToken string
	RemoteIP     string
}

// JoinInput is a volunteer sign-up from the public join form
type JoinInput struct {
	Name         string
	Email        string
	Phone        string
	Interest     string
	Message      string
	CaptchaToken string
	RemoteIP     string
}

// DonationInput is a request to start a donation payment
type DonationInput struct {
	Amount decimal.Decimal
	Name   string
	Email  string
}

// DonationOrder is what the browser checkout needs to collect a payment
type DonationOrder struct {
	OrderID  string
	Amount   int64
	Currency string
	KeyID    string
}

// CaptchaVerifier checks a CAPTCHA response token
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// OutreachService handles the public contact, join and donation forms
type OutreachService interface {
	SubmitContact(ctx context.Context, input ContactInput) error
	SubmitJoin(ctx context.Context, input JoinInput) error
	CreateDonationOrder(ctx context.Context, input DonationInput) (*DonationOrder, error)
}

// OutreachServiceConfig holds the collaborators of the outreach service
type OutreachServiceConfig struct {
	Captcha      CaptchaVerifier
	Mailer       notify.Sender
	Gateway      payment.Gateway
	ContactInbox string
	MaxDonation  decimal.Decimal
	Now          func() time.Time
	Logger       *slog.Logger
}

type outreachService struct {
	captcha      CaptchaVerifier
	mailer       notify.Sender
	gateway      payment.Gateway
	contactInbox string
	maxDonation  decimal.Decimal
	validate     *validator.Validate
	now          func() time.Time
	logger       *slog.Logger
}

// NewOutreachService creates a new OutreachService
func NewOutreachService(config OutreachServiceConfig) OutreachService {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &outreachService{
		captcha:      config.Captcha,
		mailer:       config.Mailer,
		gateway:      config.Gateway,
		contactInbox: config.ContactInbox,
		maxDonation:  config.MaxDonation,
		validate:     validator.New(),
		now:          now,
		logger:       logger.With("component", "outreach"),
	}
}

// SubmitContact verifies the CAPTCHA, then forwards the message to the organisation inbox
func (s *outreachService) SubmitContact(ctx context.Context, input ContactInput) error {
	const op = "submit_contact"

	fields := s.requirePerson(input.Name, input.Email)
	if strings.TrimSpace(input.Message) == "" {
		fields["message"] = "is required"
	}
	if len(fields) > 0 {
		metrics.PublicFormSubmissionsTotal.WithLabelValues("contact", "invalid").Inc()
		return domain.NewValidationError(op, fields)
	}

	if err := s.verifyCaptcha(ctx, op, "contact", input.CaptchaToken, input.RemoteIP); err != nil {
		return err
	}

	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		subject = "New contact message"
	}

	msg := notify.Message{
		ToEmail: s.contactInbox,
		ReplyTo: strings.TrimSpace(input.Email),
		Subject: "[Contact] " + subject,
		HTMLBody: formatFields([][2]string{
			{"Name", input.Name},
			{"Email", input.Email},
			{"Subject", subject},
			{"Message", input.Message},
		}),
	}
	return s.deliver(ctx, op, "contact", msg)
}

// SubmitJoin verifies the CAPTCHA, then forwards the sign-up to the organisation inbox
func (s *outreachService) SubmitJoin(ctx context.Context, input JoinInput) error {
	const op = "submit_join"

	fields := s.requirePerson(input.Name, input.Email)
	if len(fields) > 0 {
		metrics.PublicFormSubmissionsTotal.WithLabelValues("join", "invalid").Inc()
		return domain.NewValidationError(op, fields)
	}

	if err := s.verifyCaptcha(ctx, op, "join", input.CaptchaToken, input.RemoteIP); err != nil {
		return err
	}

	msg := notify.Message{
		ToEmail: s.contactInbox,
		ReplyTo: strings.TrimSpace(input.Email),
		Subject: "[Join] " + strings.TrimSpace(input.Name),
		HTMLBody: formatFields([][2]string{
			{"Name", input.Name},
			{"Email", input.Email},
			{"Phone", input.Phone},
			{"Interest", input.Interest},
			{"Message", input.Message},
		}),
	}
	return s.deliver(ctx, op, "join", msg)
}

// CreateDonationOrder converts the amount to paise and opens a gateway order
func (s *outreachService) CreateDonationOrder(ctx context.Context, input DonationInput) (*DonationOrder, error) {
	const op = "create_donation_order"

	amount := input.Amount.Round(2)
	fields := map[string]string{}
	if !amount.IsPositive() {
		fields["amount"] = "must be greater than zero"
	} else if s.maxDonation.IsPositive() && amount.GreaterThan(s.maxDonation) {
		fields["amount"] = fmt.Sprintf("must not exceed %s", s.maxDonation.StringFixed(2))
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		if err := s.validate.Var(email, "email"); err != nil {
			fields["email"] = "must be a valid email address"
		}
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(op, fields)
	}

	paise := amount.Shift(2).IntPart()
	receipt := fmt.Sprintf("DON-%d", s.now().UnixMilli())

	notes := map[string]string{}
	if name := strings.TrimSpace(input.Name); name != "" {
		notes["name"] = name
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		notes["email"] = email
	}

	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   paise,
		Currency: donationCurrency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create donation order", "receipt", receipt, "error", err)
		return nil, domain.NewError(domain.KindUpstream, op, err)
	}

	s.logger.InfoContext(ctx, "donation order created", "order_id", order.ID, "amount_paise", paise)

	return &DonationOrder{
		OrderID:  order.ID,
		Amount:   paise,
		Currency: donationCurrency,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

func (s *outreachService) requirePerson(name, email string) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "is required"
	}
	email = strings.TrimSpace(email)
	if email == "" {
		fields["email"] = "is required"
	} else if err := s.validate.Var(email, "email"); err != nil {
		fields["email"] = "must be a valid email address"
	}
	return fields
}

func (s *outreachService) verifyCaptcha(ctx context.Context, op, form, token, remoteIP string) error {
	ok, err := s.captcha.Verify(ctx, token, remoteIP)
	if err != nil {
		metrics.PublicFormSubmissionsTotal.WithLabelValues(form, "captcha_error").Inc()
		s.logger.ErrorContext(ctx, "captcha verification failed", "form", form, "error", err)
		return domain.NewError(domain.KindUpstream, op, err)
	}
	if !ok {
		metrics.PublicFormSubmissionsTotal.WithLabelValues(form, "captcha_rejected").Inc()
		return domain.NewError(domain.KindValidation, op, errors.New("captcha verification failed"))
	}
	return nil
}

func (s *outreachService) deliver(ctx context.Context, op, form string, msg notify.Message) error {
	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.PublicFormSubmissionsTotal.WithLabelValues(form, "delivery_failed").Inc()
		s.logger.ErrorContext(ctx, "failed to forward form submission", "form", form, "error", err)
		return domain.NewError(domain.KindUpstream, op, err)
	}
	metrics.PublicFormSubmissionsTotal.WithLabelValues(form, "accepted").Inc()
	return nil
}

func formatFields(fields [][2]string) string {
	var b strings.Builder
	b.WriteString("<table>")
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			continue
		}
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>",
			html.EscapeString(f[0]), strings.ReplaceAll(html.EscapeString(f[1]), "\n", "<br>"))
	}
	b.WriteString("</table>")
	return b.String()
}

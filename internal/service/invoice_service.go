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
	"github.com/ridwanfathin/donation-invoice-service/internal/invoicepdf"
	"github.com/ridwanfathin/donation-invoice-service/internal/metrics"
	"github.com/ridwanfathin/donation-invoice-service/internal/notify"
	"github.com/ridwanfathin/donation-invoice-service/internal/repository"
	"github.com/ridwanfathin/donation-invoice-service/internal/storage"
)

const (
	serialAttempts   = 3
	pdfContentType   = "application/pdf"
	defaultRenderers = 4
)

// maxInvoiceAmount is the first value that no longer fits numeric(12,2)
var maxInvoiceAmount = decimal.New(1, 10)

// DocumentPurpose selects the lifetime of an issued signed URL
type DocumentPurpose string

const (
	PurposeDownload DocumentPurpose = "download"
	PurposePreview  DocumentPurpose = "preview"
)

// DocumentGenerator renders invoice metadata to PDF bytes
type DocumentGenerator interface {
	Generate(meta domain.InvoiceMetadata) ([]byte, error)
}

// CreateInvoiceInput is the donor-facing content of a new invoice
type CreateInvoiceInput struct {
	DonorName    string
	DonorEmail   string
	DonorAddress string
	Amount       decimal.Decimal
	Description  string
	Date         string
}

// CreateInvoiceResult is returned by Create
type CreateInvoiceResult struct {
	SerialNumber string
	PDFURL       string
	Invoice      *domain.InvoiceRecord
	EmailSent    bool
}

// DocumentLink is a signed URL for an invoice document
type DocumentLink struct {
	URL         string
	Regenerated bool
}

// InvoiceLink pairs a record with a signed URL to its document
type InvoiceLink struct {
	PDFURL      string
	Invoice     *domain.InvoiceRecord
	Regenerated bool
}

// Document is an invoice PDF ready to stream
type Document struct {
	Filename string
	Data     []byte
}

// InvoiceService creates invoices and keeps their documents retrievable
type InvoiceService interface {
	// Create generates, stores, records and emails a new invoice
	Create(ctx context.Context, identity *domain.Identity, input CreateInvoiceInput) (*CreateInvoiceResult, error)

	// FetchOrRegenerate issues a signed URL, rebuilding the document from its record if it is missing
	FetchOrRegenerate(ctx context.Context, serialNumber string, purpose DocumentPurpose) (*DocumentLink, error)

	// GetForAdmin returns a record by ID with a signed URL to its document
	GetForAdmin(ctx context.Context, identity *domain.Identity, id string, purpose DocumentPurpose) (*InvoiceLink, error)

	// Download returns the document bytes for a serial number
	Download(ctx context.Context, serialNumber string) (*Document, error)

	// List returns every invoice, newest first
	List(ctx context.Context, identity *domain.Identity) ([]*domain.InvoiceRecord, error)
}

// InvoiceServiceConfig holds the collaborators of the invoice service
type InvoiceServiceConfig struct {
	Records    repository.InvoiceRepository
	Blobs      storage.BlobStore
	Generator  DocumentGenerator
	Mailer     notify.Sender
	Serials    SerialSource
	Authorizer *Authorizer

	DownloadTTL time.Duration
	PreviewTTL  time.Duration
	OrgName     string

	// MaxConcurrentRenders bounds simultaneous PDF renders
	MaxConcurrentRenders int

	Logger *slog.Logger
}

// InvoiceServiceImpl implements the InvoiceService interface
type InvoiceServiceImpl struct {
	records     repository.InvoiceRepository
	blobs       storage.BlobStore
	generator   DocumentGenerator
	mailer      notify.Sender
	serials     SerialSource
	authorizer  *Authorizer
	downloadTTL time.Duration
	previewTTL  time.Duration
	orgName     string
	validate    *validator.Validate
	workerPool  chan struct{}
	logger      *slog.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(config InvoiceServiceConfig) *InvoiceServiceImpl {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderers := config.MaxConcurrentRenders
	if renderers <= 0 {
		renderers = defaultRenderers
	}
	downloadTTL := config.DownloadTTL
	if downloadTTL <= 0 {
		downloadTTL = 24 * time.Hour
	}
	previewTTL := config.PreviewTTL
	if previewTTL <= 0 {
		previewTTL = 60 * time.Second
	}

	return &InvoiceServiceImpl{
		records:     config.Records,
		blobs:       config.Blobs,
		generator:   config.Generator,
		mailer:      config.Mailer,
		serials:     config.Serials,
		authorizer:  config.Authorizer,
		downloadTTL: downloadTTL,
		previewTTL:  previewTTL,
		orgName:     config.OrgName,
		validate:    validator.New(),
		workerPool:  make(chan struct{}, renderers),
		logger:      logger.With("component", "invoice"),
	}
}

// Create runs authorize, validate, serial, generate, store, sign, persist, email.
// Steps after the upload are not compensated if a later step fails.
func (s *InvoiceServiceImpl) Create(ctx context.Context, identity *domain.Identity, input CreateInvoiceInput) (*CreateInvoiceResult, error) {
	const op = "create_invoice"

	if err := s.authorizer.Authorize(op, identity); err != nil {
		return nil, err
	}

	record, err := s.validateInput(op, input)
	if err != nil {
		return nil, err
	}

	serial, err := s.newSerialNumber(ctx, op)
	if err != nil {
		return nil, err
	}
	record.SerialNumber = serial
	log := s.logger.With("op", op, "serial_number", serial)

	data, err := s.render(ctx, op, record.Metadata())
	if err != nil {
		log.ErrorContext(ctx, "document generation failed", "error", err)
		return nil, err
	}

	key := storage.InvoiceKey(serial)
	if err := s.blobs.Put(ctx, key, data, storage.PutOptions{ContentType: pdfContentType}); err != nil {
		log.ErrorContext(ctx, "failed to store invoice document", "error", err)
		return nil, storageError(op, err)
	}

	url, err := s.blobs.SignedURL(ctx, key, s.downloadTTL)
	if err != nil {
		log.ErrorContext(ctx, "failed to sign invoice url", "error", err)
		return nil, storageError(op, err)
	}
	metrics.InvoiceSignedURLsTotal.WithLabelValues(string(PurposeDownload)).Inc()

	record.PDFURL = url
	record.Status = domain.InvoiceStatusGenerated
	if err := s.records.Create(ctx, record); err != nil {
		log.ErrorContext(ctx, "failed to persist invoice record, document is orphaned", "key", key, "error", err)
		return nil, domain.NewError(domain.KindUpstream, op, err)
	}
	metrics.InvoicesCreatedTotal.Inc()

	emailSent := s.emailDonor(ctx, record, data)

	log.InfoContext(ctx, "invoice created", "invoice_id", record.ID, "email_sent", emailSent)

	return &CreateInvoiceResult{
		SerialNumber: serial,
		PDFURL:       url,
		Invoice:      record,
		EmailSent:    emailSent,
	}, nil
}

// FetchOrRegenerate issues a signed URL for the document, regenerating it
// from the stored record when the blob has gone missing
func (s *InvoiceServiceImpl) FetchOrRegenerate(ctx context.Context, serialNumber string, purpose DocumentPurpose) (*DocumentLink, error) {
	const op = "fetch_or_regenerate"

	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return nil, domain.NewValidationError(op, map[string]string{"serialNumber": "is required"})
	}
	if !ValidSerialNumber(serialNumber) {
		return nil, domain.NewValidationError(op, map[string]string{"serialNumber": "is malformed"})
	}

	ttl, err := s.ttlFor(op, purpose)
	if err != nil {
		return nil, err
	}

	key := storage.InvoiceKey(serialNumber)
	exists, err := s.blobs.Exists(ctx, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to check invoice document", "op", op, "serial_number", serialNumber, "error", err)
		return nil, storageError(op, err)
	}

	regenerated := false
	if !exists {
		if _, err := s.regenerate(ctx, op, serialNumber); err != nil {
			return nil, err
		}
		regenerated = true
	}

	url, err := s.blobs.SignedURL(ctx, key, ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to sign invoice url", "op", op, "serial_number", serialNumber, "error", err)
		return nil, storageError(op, err)
	}
	metrics.InvoiceSignedURLsTotal.WithLabelValues(string(purpose)).Inc()

	return &DocumentLink{URL: url, Regenerated: regenerated}, nil
}

// GetForAdmin returns the record with a fresh signed URL
func (s *InvoiceServiceImpl) GetForAdmin(ctx context.Context, identity *domain.Identity, id string, purpose DocumentPurpose) (*InvoiceLink, error) {
	const op = "get_invoice"

	if err := s.authorizer.Authorize(op, identity); err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError(op, map[string]string{"id": "is required"})
	}

	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, recordError(op, err)
	}

	link, err := s.FetchOrRegenerate(ctx, record.SerialNumber, purpose)
	if err != nil {
		return nil, err
	}

	return &InvoiceLink{PDFURL: link.URL, Invoice: record, Regenerated: link.Regenerated}, nil
}

// Download returns the stored document, regenerating it if missing.
// Holding the serial number is the capability.
func (s *InvoiceServiceImpl) Download(ctx context.Context, serialNumber string) (*Document, error) {
	const op = "download_invoice"

	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return nil, domain.NewValidationError(op, map[string]string{"serialNumber": "is required"})
	}
	if !ValidSerialNumber(serialNumber) {
		return nil, domain.NewValidationError(op, map[string]string{"serialNumber": "is malformed"})
	}

	key := storage.InvoiceKey(serialNumber)
	data, err := s.blobs.Get(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		data, err = s.regenerate(ctx, op, serialNumber)
		if err != nil {
			return nil, err
		}
	default:
		s.logger.ErrorContext(ctx, "failed to read invoice document", "op", op, "serial_number", serialNumber, "error", err)
		return nil, storageError(op, err)
	}

	return &Document{Filename: key, Data: data}, nil
}

// List returns every invoice, newest first
func (s *InvoiceServiceImpl) List(ctx context.Context, identity *domain.Identity) ([]*domain.InvoiceRecord, error) {
	const op = "list_invoices"

	if err := s.authorizer.Authorize(op, identity); err != nil {
		return nil, err
	}

	invoices, err := s.records.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list invoices", "error", err)
		return nil, domain.NewError(domain.KindUpstream, op, err)
	}
	return invoices, nil
}

// regenerate rebuilds a missing document from its record and uploads it with overwrite
func (s *InvoiceServiceImpl) regenerate(ctx context.Context, op, serialNumber string) ([]byte, error) {
	record, err := s.records.GetBySerialNumber(ctx, serialNumber)
	if err != nil {
		return nil, recordError(op, err)
	}

	data, err := s.render(ctx, op, record.Metadata())
	if err != nil {
		s.logger.ErrorContext(ctx, "document regeneration failed", "op", op, "serial_number", serialNumber, "error", err)
		return nil, err
	}

	key := storage.InvoiceKey(serialNumber)
	if err := s.blobs.Put(ctx, key, data, storage.PutOptions{Overwrite: true, ContentType: pdfContentType}); err != nil {
		s.logger.ErrorContext(ctx, "failed to store regenerated document", "op", op, "serial_number", serialNumber, "error", err)
		return nil, storageError(op, err)
	}

	metrics.InvoiceRegenerationsTotal.Inc()
	s.logger.InfoContext(ctx, "invoice document regenerated", "op", op, "serial_number", serialNumber)
	return data, nil
}

func (s *InvoiceServiceImpl) render(ctx context.Context, op string, meta domain.InvoiceMetadata) ([]byte, error) {
	select {
	case s.workerPool <- struct{}{}:
		defer func() {
			<-s.workerPool
		}()
	case <-ctx.Done():
		return nil, domain.NewError(domain.KindInternal, op, ctx.Err())
	}

	data, err := s.generator.Generate(meta)
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return nil, err
		}
		return nil, domain.NewError(domain.KindDocumentGeneration, op, err)
	}
	return data, nil
}

func (s *InvoiceServiceImpl) newSerialNumber(ctx context.Context, op string) (string, error) {
	for attempt := 0; attempt < serialAttempts; attempt++ {
		serial := s.serials.Next()
		exists, err := s.records.SerialNumberExists(ctx, serial)
		if err != nil {
			return "", domain.NewError(domain.KindUpstream, op, err)
		}
		if !exists {
			return serial, nil
		}
		s.logger.WarnContext(ctx, "serial number collision, retrying", "serial_number", serial, "attempt", attempt+1)
	}
	return "", domain.NewError(domain.KindInternal, op, fmt.Errorf("no free serial number after %d attempts", serialAttempts))
}

func (s *InvoiceServiceImpl) validateInput(op string, input CreateInvoiceInput) (*domain.InvoiceRecord, error) {
	donor := domain.DonorDetails{
		Name:    strings.TrimSpace(input.DonorName),
		Email:   strings.TrimSpace(input.DonorEmail),
		Address: strings.TrimSpace(input.DonorAddress),
	}
	description := strings.TrimSpace(input.Description)

	fields := map[string]string{}
	if donor.Name == "" {
		fields["donorName"] = "is required"
	}
	if donor.Email == "" {
		fields["donorEmail"] = "is required"
	} else if err := s.validate.Var(donor.Email, "email"); err != nil {
		fields["donorEmail"] = "must be a valid email address"
	}
	if donor.Address == "" {
		fields["donorAddress"] = "is required"
	}
	if description == "" {
		fields["description"] = "is required"
	}
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		fields["amount"] = "must be greater than zero"
	} else if amount.GreaterThanOrEqual(maxInvoiceAmount) {
		fields["amount"] = "is too large"
	}

	var date domain.DateOnly
	if strings.TrimSpace(input.Date) == "" {
		fields["date"] = "is required"
	} else if d, err := domain.ParseDateOnly(strings.TrimSpace(input.Date)); err != nil {
		fields["date"] = "must be a valid YYYY-MM-DD date"
	} else {
		date = d
	}

	if len(fields) > 0 {
		return nil, domain.NewValidationError(op, fields)
	}

	return &domain.InvoiceRecord{
		DonorDetails: donor,
		Amount:       amount,
		Date:         date,
		Description:  description,
	}, nil
}

func (s *InvoiceServiceImpl) ttlFor(op string, purpose DocumentPurpose) (time.Duration, error) {
	switch purpose {
	case PurposeDownload, "":
		return s.downloadTTL, nil
	case PurposePreview:
		return s.previewTTL, nil
	default:
		return 0, domain.NewValidationError(op, map[string]string{"purpose": "must be download or preview"})
	}
}

// emailDonor sends the document to the donor. Failures are logged and counted, never returned.
func (s *InvoiceServiceImpl) emailDonor(ctx context.Context, record *domain.InvoiceRecord, data []byte) bool {
	if s.mailer == nil {
		return false
	}

	org := s.orgName
	if org == "" {
		org = "us"
	}
	amount := invoicepdf.FormatINR(record.Amount)

	msg := notify.Message{
		ToName:  record.DonorDetails.Name,
		ToEmail: record.DonorDetails.Email,
		Subject: fmt.Sprintf("Your donation invoice %s", record.SerialNumber),
		HTMLBody: fmt.Sprintf(
			"<p>Dear %s,</p><p>Thank you for your donation of %s to %s. Your invoice <strong>%s</strong> is attached.</p>",
			html.EscapeString(record.DonorDetails.Name), amount, html.EscapeString(org), html.EscapeString(record.SerialNumber),
		),
		TextBody: fmt.Sprintf("Dear %s,\n\nThank you for your donation of %s to %s. Your invoice %s is attached.\n",
			record.DonorDetails.Name, amount, org, record.SerialNumber),
		Attachments: []notify.Attachment{{Name: storage.InvoiceKey(record.SerialNumber), Content: data}},
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.InvoiceEmailFailuresTotal.Inc()
		s.logger.ErrorContext(ctx, "failed to email invoice to donor", "serial_number", record.SerialNumber, "error", err)
		return false
	}
	return true
}

func storageError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return domain.NewError(domain.KindNotFound, op, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return domain.NewError(domain.KindInternal, op, err)
	default:
		return domain.NewError(domain.KindUpstream, op, err)
	}
}

func recordError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewError(domain.KindNotFound, op, err)
	}
	return domain.NewError(domain.KindUpstream, op, err)
}

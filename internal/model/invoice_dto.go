package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
)

// CreateInvoiceRequest represents the body of an invoice creation request
type CreateInvoiceRequest struct {
	DonorName    string          `json:"donorName" binding:"max=200" example:"Asha Rao"`
	DonorEmail   string          `json:"donorEmail" binding:"max=254" example:"asha@example.com"`
	DonorAddress string          `json:"donorAddress" binding:"max=500" example:"12 MG Road"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"number" example:"1500.00"`
	Description  string          `json:"description" binding:"max=500" example:"General donation"`
	Date         string          `json:"date" example:"2025-03-08"` // Format: YYYY-MM-DD
}

// RegenerateRequest identifies the invoice whose document should be served
type RegenerateRequest struct {
	SerialNumber string `json:"serialNumber" form:"serialNumber" example:"INV-20250308-1766064727859539968"`
}

// DonorDetailsResponse represents who an invoice is billed to
type DonorDetailsResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// InvoiceResponse represents a single invoice record
type InvoiceResponse struct {
	ID           string               `json:"id"`
	SerialNumber string               `json:"serialNumber"`
	DonorDetails DonorDetailsResponse `json:"donorDetails"`
	Amount       string               `json:"amount" example:"1500.00"`
	Date         string               `json:"date"`
	Description  string               `json:"description"`
	PDFURL       string               `json:"pdfUrl"`
	Status       string               `json:"status"`
	CreatedAt    string               `json:"createdAt"`
}

// CreateInvoiceResponse represents a successful invoice creation
type CreateInvoiceResponse struct {
	Success      bool             `json:"success"`
	SerialNumber string           `json:"serialNumber"`
	PDFURL       string           `json:"pdfUrl"`
	EmailSent    bool             `json:"emailSent"`
	Invoice      *InvoiceResponse `json:"invoice"`
}

// InvoiceLinkResponse pairs an invoice with a signed URL to its document
type InvoiceLinkResponse struct {
	PDFURL  string           `json:"pdfUrl"`
	Invoice *InvoiceResponse `json:"invoice"`
}

// InvoicesListResponse represents the invoice history
type InvoicesListResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
}

// NewInvoiceResponse converts a domain record to its API representation
func NewInvoiceResponse(record *domain.InvoiceRecord) *InvoiceResponse {
	if record == nil {
		return nil
	}

	var createdAt string
	if !record.CreatedAt.IsZero() {
		createdAt = record.CreatedAt.UTC().Format(time.RFC3339)
	}

	return &InvoiceResponse{
		ID:           record.ID,
		SerialNumber: record.SerialNumber,
		DonorDetails: DonorDetailsResponse{
			Name:    record.DonorDetails.Name,
			Email:   record.DonorDetails.Email,
			Address: record.DonorDetails.Address,
		},
		Amount:      record.Amount.StringFixed(2),
		Date:        record.Date.String(),
		Description: record.Description,
		PDFURL:      record.PDFURL,
		Status:      string(record.Status),
		CreatedAt:   createdAt,
	}
}

// NewInvoicesListResponse converts records to the history response, preserving order
func NewInvoicesListResponse(records []*domain.InvoiceRecord) InvoicesListResponse {
	invoices := make([]InvoiceResponse, 0, len(records))
	for _, record := range records {
		invoices = append(invoices, *NewInvoiceResponse(record))
	}
	return InvoicesListResponse{Invoices: invoices}
}

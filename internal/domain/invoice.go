package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format for invoice dates
const DateLayout = "2006-01-02"

// DateOnly is a custom type for handling date-only strings from JSON
type DateOnly struct {
	time.Time
}

// ParseDateOnly parses a YYYY-MM-DD string
func ParseDateOnly(s string) (DateOnly, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return DateOnly{}, err
	}
	return DateOnly{Time: t}, nil
}

// UnmarshalJSON implements custom unmarshaling for date-only strings
func (d *DateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	// Handle null/empty dates
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON implements custom marshaling for date-only strings
func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(DateLayout))
}

// String returns the YYYY-MM-DD form, or "" for the zero date
func (d DateOnly) String() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// InvoiceStatus is the lifecycle tag of an invoice record
type InvoiceStatus string

const (
	InvoiceStatusGenerated InvoiceStatus = "generated"
)

// DonorDetails identifies who an invoice is billed to
type DonorDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// InvoiceRecord is the persisted metadata of a generated invoice.
// SerialNumber correlates the record with its PDF in the blob store.
type InvoiceRecord struct {
	ID           string          `json:"id"`
	SerialNumber string          `json:"serial_number"`
	DonorDetails DonorDetails    `json:"donor_details"`
	Amount       decimal.Decimal `json:"amount"`
	Date         DateOnly        `json:"date"`
	Description  string          `json:"description"`
	PDFURL       string          `json:"pdf_url"`
	Status       InvoiceStatus   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Metadata returns the inputs needed to (re)generate the record's document
func (r *InvoiceRecord) Metadata() InvoiceMetadata {
	return InvoiceMetadata{
		SerialNumber: r.SerialNumber,
		Donor:        r.DonorDetails,
		Amount:       r.Amount,
		Description:  r.Description,
		Date:         r.Date.String(),
	}
}

// InvoiceMetadata is everything the document generator renders
type InvoiceMetadata struct {
	SerialNumber string
	Donor        DonorDetails
	Amount       decimal.Decimal
	Description  string
	Date         string // YYYY-MM-DD
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
)

// ErrNotFound is returned when no invoice matches the lookup
var ErrNotFound = errors.New("invoice not found")

// InvoiceRepository defines the interface for invoice record storage
type InvoiceRepository interface {
	// Create persists a record and fills in its ID and CreatedAt
	Create(ctx context.Context, invoice *domain.InvoiceRecord) error

	// GetByID retrieves an invoice by its ID
	GetByID(ctx context.Context, id string) (*domain.InvoiceRecord, error)

	// GetBySerialNumber retrieves an invoice by its serial number
	GetBySerialNumber(ctx context.Context, serialNumber string) (*domain.InvoiceRecord, error)

	// SerialNumberExists reports whether a serial number is already taken
	SerialNumberExists(ctx context.Context, serialNumber string) (bool, error)

	// List returns every invoice, newest first
	List(ctx context.Context) ([]*domain.InvoiceRecord, error)
}

// RepositoryError represents an error that occurred within a repository
type RepositoryError struct {
	// Op is the operation that failed
	Op string

	// Err is the underlying error
	Err error
}

// Error returns a string representation of the error
func (e *RepositoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
)

const invoiceColumns = `id::text, serial_number, donor_details, amount::text, date, description, pdf_url, status, created_at`

// PostgresInvoiceRepository implements InvoiceRepository using PostgreSQL
type PostgresInvoiceRepository struct {
	db *pgxpool.Pool
}

// NewPostgresInvoiceRepository creates a new PostgreSQL invoice repository
func NewPostgresInvoiceRepository(db *pgxpool.Pool) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{
		db: db,
	}
}

// Create saves a new invoice record
func (r *PostgresInvoiceRepository) Create(ctx context.Context, invoice *domain.InvoiceRecord) error {
	donor, err := json.Marshal(invoice.DonorDetails)
	if err != nil {
		return &RepositoryError{Op: "create_invoice", Err: fmt.Errorf("failed to encode donor details: %w", err)}
	}

	status := invoice.Status
	if status == "" {
		status = domain.InvoiceStatusGenerated
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO invoices (serial_number, donor_details, amount, date, description, pdf_url, status)
		VALUES ($1, $2::jsonb, $3::numeric, $4::date, $5, $6, $7)
		RETURNING id::text, created_at
	`, invoice.SerialNumber, string(donor), invoice.Amount.String(), invoice.Date.Time,
		invoice.Description, invoice.PDFURL, string(status)).Scan(&invoice.ID, &invoice.CreatedAt)
	if err != nil {
		return &RepositoryError{Op: "create_invoice", Err: fmt.Errorf("failed to insert invoice: %w", err)}
	}

	invoice.Status = status
	return nil
}

// GetByID retrieves an invoice by its ID
func (r *PostgresInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.InvoiceRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id::text = $1`, id)
	invoice, err := scanInvoice(row)
	if err != nil {
		return nil, &RepositoryError{Op: "get_invoice", Err: err}
	}
	return invoice, nil
}

// GetBySerialNumber retrieves an invoice by its serial number
func (r *PostgresInvoiceRepository) GetBySerialNumber(ctx context.Context, serialNumber string) (*domain.InvoiceRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE serial_number = $1`, serialNumber)
	invoice, err := scanInvoice(row)
	if err != nil {
		return nil, &RepositoryError{Op: "get_invoice_by_serial", Err: err}
	}
	return invoice, nil
}

// SerialNumberExists reports whether a serial number is already taken
func (r *PostgresInvoiceRepository) SerialNumberExists(ctx context.Context, serialNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE serial_number = $1)`, serialNumber).Scan(&exists)
	if err != nil {
		return false, &RepositoryError{Op: "serial_number_exists", Err: fmt.Errorf("failed to check serial number: %w", err)}
	}
	return exists, nil
}

// List returns every invoice, newest first
func (r *PostgresInvoiceRepository) List(ctx context.Context) ([]*domain.InvoiceRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY created_at DESC, serial_number DESC`)
	if err != nil {
		return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("failed to query invoices: %w", err)}
	}
	defer rows.Close()

	invoices := []*domain.InvoiceRecord{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, &RepositoryError{Op: "list_invoices", Err: err}
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("error iterating invoices: %w", err)}
	}

	return invoices, nil
}

func scanInvoice(row pgx.Row) (*domain.InvoiceRecord, error) {
	var (
		invoice domain.InvoiceRecord
		donor   []byte
		amount  string
		date    time.Time
		status  string
	)

	err := row.Scan(&invoice.ID, &invoice.SerialNumber, &donor, &amount, &date,
		&invoice.Description, &invoice.PDFURL, &status, &invoice.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	if err := json.Unmarshal(donor, &invoice.DonorDetails); err != nil {
		return nil, fmt.Errorf("failed to decode donor details: %w", err)
	}

	invoice.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}

	invoice.Date = domain.DateOnly{Time: date}
	invoice.Status = domain.InvoiceStatus(status)
	return &invoice, nil
}

package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// InvoiceRepository handles invoice database operations.
type InvoiceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(db *sql.DB, logger *slog.Logger) *InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `
	id
  , tenant_id
  , work_order_id
  , number
  , status
  , customer_id
  , customer_name
  , lines
  , subtotal
  , tax_total
  , discount_total
  , total
  , amount_paid
  , amount_due
  , idempotency_key
  , issued_at
  , due_at
  , created_at
`

func scanInvoice(row interface{ Scan(...any) error }) (*models.Invoice, error) {
	var (
		invoice      models.Invoice
		customerID   sql.NullString
		customerName sql.NullString
		linesJSON    []byte
		issuedAt     sql.NullTime
		dueAt        sql.NullTime
	)

	err := row.Scan(
		&invoice.ID,
		&invoice.TenantID,
		&invoice.WorkOrderID,
		&invoice.Number,
		&invoice.Status,
		&customerID,
		&customerName,
		&linesJSON,
		&invoice.Subtotal,
		&invoice.TaxTotal,
		&invoice.DiscountTotal,
		&invoice.Total,
		&invoice.AmountPaid,
		&invoice.AmountDue,
		&invoice.IdempotencyKey,
		&issuedAt,
		&dueAt,
		&invoice.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.CustomerID = customerID.String
	invoice.CustomerName = customerName.String
	invoice.IssuedAt = issuedAt.Time
	invoice.DueAt = dueAt.Time

	if len(linesJSON) > 0 {
		if err := json.Unmarshal(linesJSON, &invoice.Lines); err != nil {
			return nil, fmt.Errorf("failed to unmarshal invoice lines: %w", err)
		}
	}

	return &invoice, nil
}

func (r *InvoiceRepository) queryInvoices(ctx context.Context, query string, args ...any) ([]*models.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	invoices := make([]*models.Invoice, 0)

	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}

		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// ListByTenant returns the tenant's invoices, newest first.
func (r *InvoiceRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id
	`

	return r.queryInvoices(ctx, query, tenantID)
}

// ListByWorkOrder returns the invoices generated for a work order.
func (r *InvoiceRepository) ListByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND work_order_id = $2
		ORDER BY created_at DESC, id
	`

	return r.queryInvoices(ctx, query, tenantID, workOrderID)
}

// GetByIdempotencyKey returns the invoice created under the key, or nil.
func (r *InvoiceRepository) GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND idempotency_key = $2
	`

	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, tenantID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	return invoice, nil
}

// Create inserts an invoice. The unique index on (tenant_id,
// idempotency_key) makes the insert race-free: a replay inserts zero rows
// and reports ErrDuplicateIdempotencyKey.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}

	linesJSON, err := json.Marshal(invoice.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice lines: %w", err)
	}

	query := `
		INSERT INTO invoices (id, tenant_id, work_order_id, number, status, customer_id, customer_name, lines, subtotal, tax_total, discount_total, total, amount_paid, amount_due, idempotency_key, issued_at, due_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (tenant_id, idempotency_key) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.TenantID,
		invoice.WorkOrderID,
		invoice.Number,
		invoice.Status,
		nullableString(invoice.CustomerID),
		nullableString(invoice.CustomerName),
		linesJSON,
		invoice.Subtotal,
		invoice.TaxTotal,
		invoice.DiscountTotal,
		invoice.Total,
		invoice.AmountPaid,
		invoice.AmountDue,
		invoice.IdempotencyKey,
		nullableTime(invoice.IssuedAt),
		nullableTime(invoice.DueAt),
		invoice.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}

	if inserted == 0 {
		return persistence.NewRepositoryError("Create", invoice.TenantID, invoice.IdempotencyKey, persistence.ErrDuplicateIdempotencyKey)
	}

	return nil
}

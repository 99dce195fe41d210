package file

import (
	"context"
	"path"
	"sort"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// InvoiceRepository handles invoice file operations. Records live under
// invoices/<tenant>/<id>.json.
type InvoiceRepository struct {
	store *store[models.Invoice]
}

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(root string) *InvoiceRepository {
	return &InvoiceRepository{store: newStore[models.Invoice](root, "invoices")}
}

// ListByTenant returns the tenant's invoices, newest first.
func (r *InvoiceRepository) ListByTenant(_ context.Context, tenantID string) ([]*models.Invoice, error) {
	invoices, err := r.store.listDir(tenantID)
	if err != nil {
		return nil, err
	}

	sort.Slice(invoices, func(i, j int) bool {
		if !invoices[i].CreatedAt.Equal(invoices[j].CreatedAt) {
			return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
		}

		return invoices[i].ID < invoices[j].ID
	})

	return invoices, nil
}

// ListByWorkOrder returns the invoices generated for a work order.
func (r *InvoiceRepository) ListByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]*models.Invoice, error) {
	all, err := r.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	invoices := make([]*models.Invoice, 0)

	for _, invoice := range all {
		if invoice.WorkOrderID == workOrderID {
			invoices = append(invoices, invoice)
		}
	}

	return invoices, nil
}

// GetByIdempotencyKey returns the invoice created under the key, or nil.
func (r *InvoiceRepository) GetByIdempotencyKey(_ context.Context, tenantID, key string) (*models.Invoice, error) {
	invoices, err := r.store.listDir(tenantID)
	if err != nil {
		return nil, err
	}

	for _, invoice := range invoices {
		if invoice.IdempotencyKey == key {
			return invoice, nil
		}
	}

	return nil, nil
}

// Create inserts an invoice, refusing a second record with the same
// idempotency key for the tenant. The check and write run under one lock.
func (r *InvoiceRepository) Create(_ context.Context, invoice *models.Invoice) error {
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}

	return r.store.mutate(func() error {
		if invoice.IdempotencyKey != "" {
			existing, err := r.store.listFiles(invoice.TenantID)
			if err != nil {
				return err
			}

			for _, other := range existing {
				if other.IdempotencyKey == invoice.IdempotencyKey {
					return persistence.NewRepositoryError("Create", invoice.TenantID, invoice.IdempotencyKey, persistence.ErrDuplicateIdempotencyKey)
				}
			}
		}

		return r.store.writeFile(path.Join(invoice.TenantID, invoice.ID), invoice)
	})
}

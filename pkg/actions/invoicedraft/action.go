// Package invoicedraft drafts an invoice from a work order's time entries.
package invoicedraft

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/numbering"
	"github.com/fieldline/fieldline/pkg/persistence"
	"github.com/google/uuid"
)

// Action builds one draft invoice per dispatch: one line per time entry,
// priced at the resolved labor rate. Replayed deliveries find the invoice
// created by the first delivery and report already-applied.
type Action struct {
	timeEntries persistence.TimeEntryRepository
	invoices    persistence.InvoiceRepository
	numbers     *numbering.Allocator
	paramRate   float64
	defaultRate float64
	dueInDays   int
}

func NewAction(persist persistence.Persistence, numbers *numbering.Allocator, defaultRate float64, config map[string]any) (*Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	paramRate, _ := config["labor_rate"].(float64)

	dueInDays := defaultDueInDays
	if v, ok := config["due_in_days"].(float64); ok && v >= 1 {
		dueInDays = int(v)
	}

	return &Action{
		timeEntries: persist.TimeEntries(),
		invoices:    persist.Invoices(),
		numbers:     numbers,
		paramRate:   paramRate,
		defaultRate: defaultRate,
		dueInDays:   dueInDays,
	}, nil
}

func (a *Action) Execute(ctx context.Context, ictx models.InvocationContext, logger *slog.Logger) (models.ActionResult, error) {
	logger = logger.With("action_type", "create_invoice_draft")

	existing, err := a.invoices.GetByIdempotencyKey(ctx, ictx.TenantID, ictx.IdempotencyKey)
	if err != nil {
		return models.ActionResult{}, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	if existing != nil {
		logger.InfoContext(ctx, "Invoice already drafted for this dispatch", "invoice_number", existing.Number)

		return alreadyApplied(existing), nil
	}

	entries, err := a.timeEntries.ListByWorkOrder(ctx, ictx.TenantID, ictx.WorkOrder.ID)
	if err != nil {
		return models.ActionResult{}, fmt.Errorf("failed to load time entries: %w", err)
	}

	if len(entries) == 0 {
		logger.InfoContext(ctx, "No time entries to bill, not drafting an invoice")

		return models.ActionResult{Detail: "no time entries to bill"}, nil
	}

	rate := a.rateFor(ictx.WorkOrder)

	lines := make([]models.InvoiceLine, 0, len(entries))
	for _, entry := range entries {
		description := entry.Notes
		if description == "" {
			description = fmt.Sprintf("Labor on work order %s", ictx.WorkOrder.Number)
		}

		lines = append(lines, models.InvoiceLine{
			Description: description,
			ItemType:    "labor",
			Quantity:    entry.Hours(),
			UnitPrice:   rate,
		})
	}

	number, err := a.numbers.NextInvoiceNumber()
	if err != nil {
		return models.ActionResult{}, fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	now := time.Now().UTC()
	invoice := &models.Invoice{
		ID:             uuid.New().String(),
		TenantID:       ictx.TenantID,
		WorkOrderID:    ictx.WorkOrder.ID,
		Number:         number,
		Status:         models.InvoiceStatusDraft,
		CustomerID:     ictx.WorkOrder.CustomerID,
		CustomerName:   ictx.WorkOrder.CustomerName,
		Lines:          lines,
		IdempotencyKey: ictx.IdempotencyKey,
		IssuedAt:       now,
		DueAt:          now.AddDate(0, 0, a.dueInDays),
		CreatedAt:      now,
	}
	invoice.Recalculate()

	err = a.invoices.Create(ctx, invoice)
	if err != nil {
		if persistence.IsDuplicateIdempotencyKey(err) {
			// Lost the race against a concurrent delivery of the same
			// transition; the first writer's invoice is the one that counts.
			winner, getErr := a.invoices.GetByIdempotencyKey(ctx, ictx.TenantID, ictx.IdempotencyKey)
			if getErr == nil && winner != nil {
				return alreadyApplied(winner), nil
			}
		}

		return models.ActionResult{}, fmt.Errorf("failed to create invoice: %w", err)
	}

	logger.InfoContext(ctx, "Drafted invoice",
		"invoice_number", number,
		"total", invoice.Total,
		"lines", len(lines))

	return models.ActionResult{
		Detail: fmt.Sprintf("drafted invoice %s for %.2f", number, invoice.Total),
		Output: map[string]any{
			"invoice_id":     invoice.ID,
			"invoice_number": number,
			"total":          invoice.Total,
			"line_count":     len(lines),
		},
	}, nil
}

// rateFor resolves the hourly rate: trigger params win, then the work order's
// own rate, then the configured default.
func (a *Action) rateFor(order *models.WorkOrder) float64 {
	if a.paramRate > 0 {
		return a.paramRate
	}

	if order.HourlyRate > 0 {
		return order.HourlyRate
	}

	return a.defaultRate
}

func alreadyApplied(invoice *models.Invoice) models.ActionResult {
	return models.ActionResult{
		Detail: fmt.Sprintf("invoice %s already drafted for this transition", invoice.Number),
		Output: map[string]any{
			"invoice_id":      invoice.ID,
			"invoice_number":  invoice.Number,
			"total":           invoice.Total,
			"already_applied": true,
		},
	}
}

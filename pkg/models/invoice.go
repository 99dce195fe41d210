package models

import (
	"math"
	"time"
)

// InvoiceStatus tracks where an invoice sits in the billing cycle. Automation
// only ever creates drafts; humans take it from there.
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusSent   InvoiceStatus = "sent"
	InvoiceStatusPaid   InvoiceStatus = "paid"
	InvoiceStatusVoided InvoiceStatus = "voided"
)

// InvoiceLine is one billable row: hours at a rate.
type InvoiceLine struct {
	Description string  `json:"description"`
	ItemType    string  `json:"item_type"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Invoice is a billing document generated from a work order's time entries.
// IdempotencyKey makes the draft-invoice action safe to replay: at most one
// invoice exists per key per tenant.
type Invoice struct {
	ID             string        `json:"id"`
	TenantID       string        `json:"tenant_id" validate:"required"`
	WorkOrderID    string        `json:"work_order_id" validate:"required"`
	Number         string        `json:"number"`
	Status         InvoiceStatus `json:"status"`
	CustomerID     string        `json:"customer_id,omitempty"`
	CustomerName   string        `json:"customer_name,omitempty"`
	Lines          []InvoiceLine `json:"lines"`
	Subtotal       float64       `json:"subtotal"`
	TaxTotal       float64       `json:"tax_total"`
	DiscountTotal  float64       `json:"discount_total"`
	Total          float64       `json:"total"`
	AmountPaid     float64       `json:"amount_paid"`
	AmountDue      float64       `json:"amount_due"`
	IdempotencyKey string        `json:"idempotency_key"`
	IssuedAt       time.Time     `json:"issued_at"`
	DueAt          time.Time     `json:"due_at"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Recalculate derives line amounts and invoice totals from quantities and
// unit prices. Every monetary value is rounded half-up to two decimals.
func (i *Invoice) Recalculate() {
	var subtotal float64

	for idx := range i.Lines {
		line := &i.Lines[idx]
		line.Amount = Round2(line.Quantity * line.UnitPrice)
		subtotal += line.Amount
	}

	i.Subtotal = Round2(subtotal)
	i.TaxTotal = Round2(i.TaxTotal)
	i.DiscountTotal = Round2(i.DiscountTotal)
	i.Total = Round2(i.Subtotal + i.TaxTotal - i.DiscountTotal)
	i.AmountPaid = Round2(i.AmountPaid)
	i.AmountDue = Round2(i.Total - i.AmountPaid)
}

// Round2 rounds half-up to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package models

import "time"

// NotificationChannel is the delivery channel a notification is queued on.
type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelPush  NotificationChannel = "push"
)

// NotificationStatus is the delivery lifecycle state. Automation writes
// queued records; an outbound dispatcher owns the rest of the lifecycle.
type NotificationStatus string

const (
	NotificationStatusQueued NotificationStatus = "queued"
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

// Notification is a customer-facing message produced by a workflow action.
// IdempotencyKey guards against duplicate sends when a transition event is
// redelivered.
type Notification struct {
	ID             string              `json:"id"`
	TenantID       string              `json:"tenant_id" validate:"required"`
	WorkOrderID    string              `json:"work_order_id" validate:"required"`
	CustomerID     string              `json:"customer_id,omitempty"`
	Channel        NotificationChannel `json:"channel"`
	Recipient      string              `json:"recipient"`
	Subject        string              `json:"subject,omitempty"`
	Body           string              `json:"body"`
	Status         NotificationStatus  `json:"status"`
	// IsRead is the in-app read state; notifications start unread.
	IsRead         bool      `json:"is_read"`
	IdempotencyKey string    `json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
}

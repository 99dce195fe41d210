// Package customernotify queues a customer-facing notification about a work
// order's status change.
package customernotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
	"github.com/fieldline/fieldline/pkg/template"
	"github.com/google/uuid"
)

// ErrNoRecipient is returned when the work order has no contact for the
// configured channel.
var ErrNoRecipient = errors.New("work order has no customer contact for the configured channel")

// Action queues exactly one notification per dispatch. The outbound
// dispatcher that actually delivers queued notifications lives outside the
// automation engine.
type Action struct {
	notifications persistence.NotificationRepository
	message       string
	subject       string
	channel       models.NotificationChannel
}

func NewAction(persist persistence.Persistence, config map[string]any) (*Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	message, _ := config["message"].(string)
	subject, _ := config["subject"].(string)

	channel := models.NotificationChannelEmail
	if v, ok := config["channel"].(string); ok && v != "" {
		channel = models.NotificationChannel(v)
	}

	return &Action{
		notifications: persist.Notifications(),
		message:       message,
		subject:       subject,
		channel:       channel,
	}, nil
}

func (a *Action) Execute(ctx context.Context, ictx models.InvocationContext, logger *slog.Logger) (models.ActionResult, error) {
	logger = logger.With("action_type", "notify_customer")

	existing, err := a.notifications.GetByIdempotencyKey(ctx, ictx.TenantID, ictx.IdempotencyKey)
	if err != nil {
		return models.ActionResult{}, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	if existing != nil {
		logger.InfoContext(ctx, "Notification already queued for this dispatch", "notification_id", existing.ID)

		return alreadyApplied(existing), nil
	}

	recipient := a.recipientFor(ictx.WorkOrder)
	if recipient == "" {
		return models.ActionResult{}, ErrNoRecipient
	}

	body, err := a.renderBody(ictx)
	if err != nil {
		return models.ActionResult{}, fmt.Errorf("failed to render message: %w", err)
	}

	subject := a.subject
	if subject == "" {
		subject = fmt.Sprintf("Update on work order %s", ictx.WorkOrder.Number)
	}

	notification := &models.Notification{
		ID:             uuid.New().String(),
		TenantID:       ictx.TenantID,
		WorkOrderID:    ictx.WorkOrder.ID,
		CustomerID:     ictx.WorkOrder.CustomerID,
		Channel:        a.channel,
		Recipient:      recipient,
		Subject:        subject,
		Body:           body,
		Status:         models.NotificationStatusQueued,
		IdempotencyKey: ictx.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}

	err = a.notifications.Create(ctx, notification)
	if err != nil {
		if persistence.IsDuplicateIdempotencyKey(err) {
			winner, getErr := a.notifications.GetByIdempotencyKey(ctx, ictx.TenantID, ictx.IdempotencyKey)
			if getErr == nil && winner != nil {
				return alreadyApplied(winner), nil
			}
		}

		return models.ActionResult{}, fmt.Errorf("failed to queue notification: %w", err)
	}

	logger.InfoContext(ctx, "Queued customer notification",
		"notification_id", notification.ID,
		"channel", string(a.channel),
		"recipient", recipient)

	return models.ActionResult{
		Detail: fmt.Sprintf("queued %s notification to %s", a.channel, recipient),
		Output: map[string]any{
			"notification_id": notification.ID,
			"channel":         string(a.channel),
			"recipient":       recipient,
		},
	}, nil
}

// renderBody resolves the message body: explicit params first, templated when
// needed, otherwise a default naming the work order and its new status.
func (a *Action) renderBody(ictx models.InvocationContext) (string, error) {
	if a.message == "" {
		return fmt.Sprintf("Work order %s is now %s", ictx.WorkOrder.Number, ictx.WorkOrder.Status), nil
	}

	if !template.NeedsTemplating(a.message) {
		return a.message, nil
	}

	return template.RenderWithContext(a.message, ictx)
}

func (a *Action) recipientFor(order *models.WorkOrder) string {
	switch a.channel {
	case models.NotificationChannelPush:
		return order.CustomerID
	default:
		return order.CustomerEmail
	}
}

func alreadyApplied(notification *models.Notification) models.ActionResult {
	return models.ActionResult{
		Detail: "notification already queued for this transition",
		Output: map[string]any{
			"notification_id": notification.ID,
			"channel":         string(notification.Channel),
			"recipient":       notification.Recipient,
			"already_applied": true,
		},
	}
}

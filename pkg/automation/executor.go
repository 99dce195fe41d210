package automation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/pkg/dedup"
	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/protocol"
	"github.com/fieldline/fieldline/pkg/registry"
)

const (
	// handlerTimeout bounds one action handler so a slow side effect cannot
	// stall the remaining triggers of the same dispatch.
	handlerTimeout = 30 * time.Second

	// dedupWindow is how long a delivered idempotency key stays in the
	// fast-path ledger. Redeliveries arrive within seconds, not days.
	dedupWindow = 24 * time.Hour
)

// IdempotencyKey derives the deterministic key for one trigger firing on one
// transition. OccurredAt is the committed transition instant, so the key is
// stable across redeliveries of the same event.
func IdempotencyKey(workOrderID, triggerID string, occurredAt time.Time) string {
	return fmt.Sprintf("wo/%s/trg/%s/%d", workOrderID, triggerID, occurredAt.UnixNano())
}

// Executor runs one candidate trigger against one work-order snapshot and
// records the outcome as an AutomationRun. Every path out of Run produces a
// run record and no error: a handler cannot poison its sibling triggers.
type Executor struct {
	logger   *slog.Logger
	registry *registry.Registry
	ledger   dedup.Deduper
}

func NewExecutor(logger *slog.Logger, registry *registry.Registry, ledger dedup.Deduper) *Executor {
	return &Executor{
		logger:   logger.With("module", "automation_executor"),
		registry: registry,
		ledger:   ledger,
	}
}

// Run dispatches a single trigger. The event is the trigger's own binding;
// occurredAt is the transition instant (for on_timeout, the watch's due
// instant).
func (e *Executor) Run(ctx context.Context, order *models.WorkOrder, trigger *models.WorkflowTrigger, occurredAt time.Time) *models.AutomationRun {
	key := IdempotencyKey(order.ID, trigger.ID, occurredAt)

	run := &models.AutomationRun{
		ID:             uuid.New().String(),
		TenantID:       order.TenantID,
		WorkOrderID:    order.ID,
		TriggerID:      trigger.ID,
		TriggerName:    trigger.Name,
		Event:          trigger.Event,
		ActionType:     trigger.Action.Type,
		IdempotencyKey: key,
		StartedAt:      time.Now().UTC(),
	}

	logger := e.logger.With(
		"tenant_id", order.TenantID,
		"work_order_id", order.ID,
		"trigger_id", trigger.ID,
		"trigger_name", trigger.Name,
		"action_type", trigger.Action.Type,
		"event", string(trigger.Event),
	)

	first, err := e.ledger.MarkIfFirst(ctx, key, dedupWindow)
	if err != nil {
		// The authoritative duplicate check lives on the invoice and
		// notification collections; a ledger outage only costs the fast path.
		logger.WarnContext(ctx, "Dedup ledger unavailable, continuing", "error", err)
	} else if !first {
		logger.InfoContext(ctx, "Duplicate delivery suppressed", "idempotency_key", key)

		return e.finish(run, models.RunStatusSuppressed, "duplicate delivery for idempotency key "+key)
	}

	snapshot := order.Document()

	fire, err := EvaluateConditions(trigger.Conditions, snapshot)
	if err != nil {
		logger.WarnContext(ctx, "Condition evaluation failed, trigger not fired", "error", err)

		return e.finish(run, models.RunStatusSuppressed, "condition evaluation failed: "+err.Error())
	}

	if !fire {
		logger.DebugContext(ctx, "Conditions not satisfied")

		return e.finish(run, models.RunStatusSkipped, "conditions not satisfied")
	}

	action, err := e.registry.CreateAction(trigger.Action.Type, trigger.Action.Params)
	if err != nil {
		logger.WarnContext(ctx, "Action type not available, trigger dropped", "error", err)

		return e.finish(run, models.RunStatusSuppressed, err.Error())
	}

	ictx := models.InvocationContext{
		ID:             run.ID,
		TenantID:       order.TenantID,
		WorkOrder:      order,
		Snapshot:       snapshot,
		Trigger:        trigger,
		Event:          trigger.Event,
		Params:         trigger.Action.Params,
		IdempotencyKey: key,
		OccurredAt:     occurredAt,
	}

	result, err := e.invoke(ctx, action, ictx, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Action handler failed", "error", err)

		return e.finish(run, models.RunStatusFailed, err.Error())
	}

	logger.InfoContext(ctx, "Action executed", "detail", result.Detail)

	return e.finish(run, models.RunStatusExecuted, result.Detail)
}

// invoke runs the handler behind its own deadline and recover guard.
func (e *Executor) invoke(ctx context.Context, action protocol.Action, ictx models.InvocationContext, logger *slog.Logger) (result models.ActionResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action handler panicked: %v", r)
		}
	}()

	return action.Execute(ctx, ictx, logger)
}

func (e *Executor) finish(run *models.AutomationRun, status models.RunStatus, detail string) *models.AutomationRun {
	run.Status = status
	run.Detail = detail
	run.FinishedAt = time.Now().UTC()
	run.Duration = run.FinishedAt.Sub(run.StartedAt)

	return run
}

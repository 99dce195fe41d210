package automation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/pkg/eventbus"
	"github.com/fieldline/fieldline/pkg/events"
	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// Processor orchestrates trigger dispatch for work-order transitions and
// confirmed status timeouts. It can never fail the status write that produced
// the transition: errors before dispatch return for redelivery (safe under
// the idempotency contract), handler outcomes are recorded data.
type Processor struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	definitions *Definitions
	executor    *Executor
	publisher   eventbus.EventPublisher
}

func NewProcessor(
	logger *slog.Logger,
	persist persistence.Persistence,
	definitions *Definitions,
	executor *Executor,
	publisher eventbus.EventPublisher,
) *Processor {
	return &Processor{
		logger:      logger.With("module", "automation_processor"),
		persistence: persist,
		definitions: definitions,
		executor:    executor,
		publisher:   publisher,
	}
}

// ProcessTransition dispatches the on_exit triggers of the status left and
// the on_enter triggers of the status entered, then rearms dwell watches for
// the new status. The two trigger batches are loaded independently: a trigger
// bound to on_exit of a status never fires on entering it.
func (p *Processor) ProcessTransition(ctx context.Context, t models.Transition) error {
	logger := p.logger.With(
		"tenant_id", t.TenantID,
		"work_order_id", t.WorkOrderID,
		"from", t.From,
		"to", t.To,
	)

	if t.NoChange() {
		logger.DebugContext(ctx, "Same-status transition, nothing to dispatch")

		return nil
	}

	started := time.Now().UTC()

	order, err := p.persistence.WorkOrders().GetByID(ctx, t.TenantID, t.WorkOrderID)
	if err != nil {
		return fmt.Errorf("failed to load work order snapshot: %w", err)
	}

	if order == nil {
		logger.WarnContext(ctx, "Work order no longer exists, dropping transition")

		return nil
	}

	var candidates []*models.WorkflowTrigger

	// A creation transition has no status to exit.
	if t.From != "" {
		exits, err := p.definitions.TriggersFor(ctx, t.TenantID, t.From, models.TriggerOnExit)
		if err != nil {
			return fmt.Errorf("failed to load on_exit triggers for %q: %w", t.From, err)
		}

		candidates = append(candidates, exits...)
	}

	enters, err := p.definitions.TriggersFor(ctx, t.TenantID, t.To, models.TriggerOnEnter)
	if err != nil {
		return fmt.Errorf("failed to load on_enter triggers for %q: %w", t.To, err)
	}

	candidates = append(candidates, enters...)

	logger.InfoContext(ctx, "Processing transition", "candidate_triggers", len(candidates))

	runs := make([]*models.AutomationRun, 0, len(candidates))

	for _, trigger := range candidates {
		run := p.executor.Run(ctx, order, trigger, t.OccurredAt)
		p.saveRun(ctx, logger, run)
		runs = append(runs, run)
	}

	err = p.rearmWatches(ctx, t)
	if err != nil {
		// Redelivery retries the watches; the actions above are covered by
		// their idempotency keys.
		return err
	}

	p.publishCompleted(ctx, logger, t.TenantID, t.WorkOrderID, "", t.From, t.To, runs, started)

	return nil
}

// ProcessTimeout confirms a due status watch against the live work order and,
// if the order is still sitting in the watched status for the same entry
// instant, dispatches the on_timeout trigger. The watch's due instant serves
// as the transition timestamp, so redelivered timeout events dedupe.
func (p *Processor) ProcessTimeout(ctx context.Context, watch models.StatusWatch) error {
	logger := p.logger.With(
		"tenant_id", watch.TenantID,
		"work_order_id", watch.WorkOrderID,
		"watch_id", watch.ID,
		"trigger_id", watch.TriggerID,
		"status_name", watch.StatusName,
	)

	started := time.Now().UTC()

	order, err := p.persistence.WorkOrders().GetByID(ctx, watch.TenantID, watch.WorkOrderID)
	if err != nil {
		return fmt.Errorf("failed to load work order for timeout check: %w", err)
	}

	if order == nil {
		logger.WarnContext(ctx, "Work order no longer exists, dropping timeout")

		return nil
	}

	if order.Status != watch.StatusName {
		logger.DebugContext(ctx, "Work order left the watched status before the timeout", "current_status", order.Status)

		return nil
	}

	if !order.StatusSince.Equal(watch.EnteredAt) {
		logger.DebugContext(ctx, "Work order re-entered the status after the watch was armed", "status_since", order.StatusSince)

		return nil
	}

	trigger, err := p.persistence.WorkflowTriggers().GetByID(ctx, watch.TenantID, watch.TriggerID)
	if err != nil {
		return fmt.Errorf("failed to load trigger for timeout dispatch: %w", err)
	}

	if trigger == nil {
		logger.InfoContext(ctx, "Trigger deleted since the watch was armed, dropping timeout")

		return nil
	}

	if trigger.Event != models.TriggerOnTimeout || trigger.StatusName != watch.StatusName {
		logger.InfoContext(ctx, "Trigger no longer binds the watched status timeout, dropping",
			"trigger_event", string(trigger.Event), "trigger_status", trigger.StatusName)

		return nil
	}

	logger.InfoContext(ctx, "Timeout confirmed, dispatching trigger")

	run := p.executor.Run(ctx, order, trigger, watch.DueAt)
	p.saveRun(ctx, logger, run)

	p.publishCompleted(ctx, logger, watch.TenantID, watch.WorkOrderID,
		models.TriggerOnTimeout, "", watch.StatusName, []*models.AutomationRun{run}, started)

	return nil
}

// rearmWatches replaces the work order's dwell watches with the set implied
// by the status it just entered. Disarm-then-arm keeps redeliveries from
// stacking duplicate watches.
func (p *Processor) rearmWatches(ctx context.Context, t models.Transition) error {
	err := p.persistence.StatusWatches().DisarmByWorkOrder(ctx, t.TenantID, t.WorkOrderID)
	if err != nil {
		return fmt.Errorf("failed to disarm status watches: %w", err)
	}

	timeouts, err := p.definitions.TriggersFor(ctx, t.TenantID, t.To, models.TriggerOnTimeout)
	if err != nil {
		return fmt.Errorf("failed to load on_timeout triggers for %q: %w", t.To, err)
	}

	for _, trigger := range timeouts {
		watch := &models.StatusWatch{
			ID:          uuid.New().String(),
			TenantID:    t.TenantID,
			WorkOrderID: t.WorkOrderID,
			StatusName:  t.To,
			TriggerID:   trigger.ID,
			EnteredAt:   t.OccurredAt,
			DueAt:       t.OccurredAt.Add(trigger.TimeoutAfter),
		}

		err = p.persistence.StatusWatches().Arm(ctx, watch)
		if err != nil {
			return fmt.Errorf("failed to arm status watch for trigger %s: %w", trigger.ID, err)
		}
	}

	return nil
}

// saveRun persists the audit record. A failed save is logged, not retried:
// the action already ran, and failing the dispatch here would replay it.
func (p *Processor) saveRun(ctx context.Context, logger *slog.Logger, run *models.AutomationRun) {
	err := p.persistence.AutomationRuns().Save(ctx, run)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to save automation run",
			"run_id", run.ID, "trigger_id", run.TriggerID, "error", err)
	}
}

// publishCompleted emits the aggregate outcome. The event is advisory; a
// publish failure is logged and the dispatch still counts as processed.
func (p *Processor) publishCompleted(
	ctx context.Context,
	logger *slog.Logger,
	tenantID, workOrderID string,
	event models.TriggerEvent,
	from, to string,
	runs []*models.AutomationRun,
	started time.Time,
) {
	completed := events.AutomationCompleted{
		BaseEvent: events.NewBaseEvent(events.AutomationCompletedEvent, tenantID, workOrderID),
		Event:     event,
		From:      from,
		To:        to,
	}

	for _, run := range runs {
		completed.Runs = append(completed.Runs, events.RunSummary{
			TriggerID:   run.TriggerID,
			TriggerName: run.TriggerName,
			ActionType:  run.ActionType,
			Status:      run.Status,
			Detail:      run.Detail,
		})

		switch run.Status {
		case models.RunStatusExecuted:
			completed.Executed++
		case models.RunStatusSkipped:
			completed.Skipped++
		case models.RunStatusSuppressed:
			completed.Suppressed++
		case models.RunStatusFailed:
			completed.Failed++
		}
	}

	completed.DurationMs = time.Since(started).Milliseconds()

	err := p.publisher.Publish(ctx, tenantID+"/"+workOrderID, completed)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to publish automation completed event", "error", err)
	}

	logger.InfoContext(ctx, "Dispatch complete",
		"executed", completed.Executed,
		"skipped", completed.Skipped,
		"suppressed", completed.Suppressed,
		"failed", completed.Failed,
		"duration_ms", completed.DurationMs,
	)
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fieldline/fieldline/pkg/automation"
	"github.com/fieldline/fieldline/pkg/dedup"
	"github.com/fieldline/fieldline/pkg/eventbus"
	"github.com/fieldline/fieldline/pkg/events"
	"github.com/fieldline/fieldline/pkg/otelhelper"
	"github.com/fieldline/fieldline/pkg/persistence"
	"github.com/fieldline/fieldline/pkg/registry"
)

// WorkerManager consumes transition and timeout events and drives the
// automation processor. Handler errors propagate to the bus for redelivery;
// per-trigger failures are recorded by the processor and never surface here.
type WorkerManager struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	processor   *automation.Processor
	tp          *sdktrace.TracerProvider
}

func NewWorkerManager(
	id string,
	persist persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	reg *registry.Registry,
	ledger dedup.Deduper,
	tp *sdktrace.TracerProvider,
) *WorkerManager {
	logger = logger.With("module", "fieldline-worker", "worker_id", id)

	definitions := automation.NewDefinitions(persist.WorkflowTriggers(), automation.DefaultDefinitionsTTL)
	executor := automation.NewExecutor(logger, reg, ledger)

	return &WorkerManager{
		id:          id,
		logger:      logger,
		persistence: persist,
		registry:    reg,
		eventBus:    eventBus,
		processor:   automation.NewProcessor(logger, persist, definitions, executor, eventBus),
		tp:          tp,
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager", "worker_id", w.id)

	err := w.eventBus.Handle(events.WorkOrderTransitionedEvent, w.handleWorkOrderTransitioned)
	if err != nil {
		return err
	}

	err = w.eventBus.Handle(events.StatusTimeoutDueEvent, w.handleStatusTimeoutDue)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

func (w *WorkerManager) handleWorkOrderTransitioned(ctx context.Context, event any) error {
	transitioned, ok := event.(*events.WorkOrderTransitioned)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for WorkOrderTransitioned")

		return nil
	}

	tracer := w.tp.Tracer("handleWorkOrderTransitioned")
	ctx, span := otelhelper.StartSpan(ctx, tracer, "handleWorkOrderTransitioned",
		attribute.String(otelhelper.TenantIDKey, transitioned.TenantID),
		attribute.String(otelhelper.WorkOrderIDKey, transitioned.WorkOrderID),
		attribute.String(otelhelper.EventIDKey, transitioned.ID),
		attribute.String(otelhelper.WorkerIDKey, w.id),
	)
	defer span.End()

	logger := w.logger.With(
		"tenant_id", transitioned.TenantID,
		"work_order_id", transitioned.WorkOrderID,
		"event_id", transitioned.ID,
	)
	logger.InfoContext(ctx, "Processing work order transition",
		"from", transitioned.From,
		"to", transitioned.To,
	)

	err := w.processor.ProcessTransition(ctx, transitioned.Transition())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to process transition", "error", err)
		otelhelper.SetError(span, err,
			attribute.String(otelhelper.WorkOrderIDKey, transitioned.WorkOrderID),
		)

		return err
	}

	return nil
}

func (w *WorkerManager) handleStatusTimeoutDue(ctx context.Context, event any) error {
	due, ok := event.(*events.StatusTimeoutDue)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for StatusTimeoutDue")

		return nil
	}

	tracer := w.tp.Tracer("handleStatusTimeoutDue")
	ctx, span := otelhelper.StartSpan(ctx, tracer, "handleStatusTimeoutDue",
		attribute.String(otelhelper.TenantIDKey, due.TenantID),
		attribute.String(otelhelper.WorkOrderIDKey, due.WorkOrderID),
		attribute.String(otelhelper.TriggerIDKey, due.TriggerID),
		attribute.String(otelhelper.StatusNameKey, due.StatusName),
		attribute.String(otelhelper.WorkerIDKey, w.id),
	)
	defer span.End()

	logger := w.logger.With(
		"tenant_id", due.TenantID,
		"work_order_id", due.WorkOrderID,
		"trigger_id", due.TriggerID,
		"event_id", due.ID,
	)
	logger.InfoContext(ctx, "Processing status timeout", "status", due.StatusName)

	err := w.processor.ProcessTimeout(ctx, due.Watch())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to process status timeout", "error", err)
		otelhelper.SetError(span, err,
			attribute.String(otelhelper.TriggerIDKey, due.TriggerID),
		)

		return err
	}

	return nil
}

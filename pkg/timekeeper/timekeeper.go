// Package timekeeper hosts the status-dwell timer. One timekeeper per
// deployment polls armed watches across all tenants, publishes a timeout
// event for each one that comes due while the order still sits in the
// watched status, and sweeps spent watches and old automation runs on a
// cron schedule.
package timekeeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fieldline/fieldline/pkg/eventbus"
	"github.com/fieldline/fieldline/pkg/events"
	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

const (
	DefaultPollInterval      = 30 * time.Second
	DefaultBatchSize         = 100
	DefaultRetentionSchedule = "0 3 * * *"
	DefaultRetentionWindow   = 30 * 24 * time.Hour
)

type Config struct {
	// PollInterval is how often the due-watch poll runs.
	PollInterval time.Duration
	// BatchSize caps how many due watches one poll picks up.
	BatchSize int
	// RetentionSchedule is the cron expression for the sweep.
	RetentionSchedule string
	// RetentionWindow is how long fired watches and finished runs are kept.
	RetentionWindow time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}

	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}

	if c.RetentionSchedule == "" {
		c.RetentionSchedule = DefaultRetentionSchedule
	}

	if c.RetentionWindow <= 0 {
		c.RetentionWindow = DefaultRetentionWindow
	}

	return c
}

// Timekeeper owns the timer side of status timeouts. It decides only that a
// watch came due; the worker re-confirms against the live order before
// dispatching the trigger.
type Timekeeper struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	config      Config
	ticker      *time.Ticker
	cron        *cron.Cron
	done        chan bool
	started     bool
	mu          sync.Mutex
}

func New(logger *slog.Logger, persist persistence.Persistence, publisher eventbus.EventPublisher, config Config) *Timekeeper {
	return &Timekeeper{
		logger:      logger.With("module", "timekeeper"),
		persistence: persist,
		publisher:   publisher,
		config:      config.withDefaults(),
	}
}

// Start begins the due-watch poller and the retention cron.
func (t *Timekeeper) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	t.logger.InfoContext(ctx, "Starting timekeeper",
		"poll_interval", t.config.PollInterval,
		"batch_size", t.config.BatchSize,
		"retention_schedule", t.config.RetentionSchedule,
		"retention_window", t.config.RetentionWindow,
	)

	t.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := t.cron.AddFunc(t.config.RetentionSchedule, func() {
		if err := t.Sweep(context.Background()); err != nil {
			t.logger.Error("Retention sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", t.config.RetentionSchedule, err)
	}

	t.ticker = time.NewTicker(t.config.PollInterval)
	t.done = make(chan bool)
	t.started = true

	go t.poll(ctx)
	t.cron.Start()

	return nil
}

// Stop shuts the poller and the retention cron down.
func (t *Timekeeper) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return nil
	}

	t.logger.InfoContext(ctx, "Stopping timekeeper")

	t.ticker.Stop()

	select {
	case t.done <- true:
	default:
	}

	t.cron.Stop()

	t.started = false

	return nil
}

func (t *Timekeeper) poll(ctx context.Context) {
	for {
		select {
		case <-t.done:
			return
		case <-ctx.Done():
			return
		case <-t.ticker.C:
			_, err := t.FireDue(ctx)
			if err != nil {
				t.logger.ErrorContext(ctx, "Failed to process due status watches", "error", err)
			}
		}
	}
}

// FireDue runs one poll pass: every due, unfired watch either publishes a
// timeout event or, when the order already left the watched status, retires
// quietly. Returns how many timeouts were dispatched.
func (t *Timekeeper) FireDue(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	due, err := t.persistence.StatusWatches().ListDue(ctx, now, t.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due status watches: %w", err)
	}

	if len(due) > 0 {
		t.logger.InfoContext(ctx, "Processing due status watches", "count", len(due))
	}

	dispatched := 0

	for _, watch := range due {
		fired, err := t.fireWatch(ctx, watch)
		if err != nil {
			t.logger.ErrorContext(ctx, "Failed to fire status watch",
				"watch_id", watch.ID,
				"work_order_id", watch.WorkOrderID,
				"error", err)

			continue
		}

		if fired {
			dispatched++
		}
	}

	return dispatched, nil
}

func (t *Timekeeper) fireWatch(ctx context.Context, watch *models.StatusWatch) (bool, error) {
	logger := t.logger.With(
		"watch_id", watch.ID,
		"tenant_id", watch.TenantID,
		"work_order_id", watch.WorkOrderID,
		"status_name", watch.StatusName,
	)

	order, err := t.persistence.WorkOrders().GetByID(ctx, watch.TenantID, watch.WorkOrderID)
	if err != nil {
		return false, fmt.Errorf("failed to load work order: %w", err)
	}

	stale := order == nil ||
		order.Status != watch.StatusName ||
		!order.StatusSince.Equal(watch.EnteredAt)
	if stale {
		logger.InfoContext(ctx, "Watch is stale, retiring without dispatch")

		err = t.persistence.StatusWatches().MarkFired(ctx, watch.ID)
		if err != nil {
			return false, fmt.Errorf("failed to retire stale watch: %w", err)
		}

		return false, nil
	}

	timeout := events.StatusTimeoutDue{
		BaseEvent:  events.NewBaseEvent(events.StatusTimeoutDueEvent, watch.TenantID, watch.WorkOrderID),
		WatchID:    watch.ID,
		TriggerID:  watch.TriggerID,
		StatusName: watch.StatusName,
		EnteredAt:  watch.EnteredAt,
		DueAt:      watch.DueAt,
	}

	// Publish before marking fired. A crash between the two republishes on
	// the next tick and the worker's idempotency absorbs it; the reverse
	// order can lose the timeout.
	err = t.publisher.Publish(ctx, watch.TenantID+"/"+watch.WorkOrderID, timeout)
	if err != nil {
		return false, fmt.Errorf("failed to publish timeout event: %w", err)
	}

	err = t.persistence.StatusWatches().MarkFired(ctx, watch.ID)
	if err != nil {
		return false, fmt.Errorf("failed to mark watch fired: %w", err)
	}

	logger.InfoContext(ctx, "Status timeout dispatched", "due_at", watch.DueAt)

	return true, nil
}

// Sweep deletes fired watches and finished automation runs older than the
// retention window.
func (t *Timekeeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-t.config.RetentionWindow)

	watches, err := t.persistence.StatusWatches().PurgeFiredBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge fired watches: %w", err)
	}

	runs, err := t.persistence.AutomationRuns().PurgeFinishedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge finished automation runs: %w", err)
	}

	t.logger.InfoContext(ctx, "Retention sweep complete",
		"watches_purged", watches,
		"runs_purged", runs,
		"cutoff", cutoff)

	return nil
}

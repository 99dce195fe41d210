package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/fieldline/fieldline/pkg/channels/gochannel"
	"github.com/fieldline/fieldline/pkg/eventbus"
	"github.com/fieldline/fieldline/pkg/events"
	"github.com/fieldline/fieldline/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)

	received := make(chan *events.WorkOrderTransitioned, 1)

	err := bus.Handle(events.WorkOrderTransitionedEvent, func(ctx context.Context, event any) error {
		transitioned, ok := event.(*events.WorkOrderTransitioned)
		if ok {
			received <- transitioned
		}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	occurredAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := events.NewWorkOrderTransitioned(models.Transition{
		TenantID:    "tenant-1",
		WorkOrderID: "wo-123",
		From:        "in_progress",
		To:          "done",
		OccurredAt:  occurredAt,
	})

	require.NoError(t, bus.Publish(ctx, "tenant-1/wo-123", event))

	select {
	case got := <-received:
		assert.Equal(t, "tenant-1", got.TenantID)
		assert.Equal(t, "wo-123", got.WorkOrderID)
		assert.Equal(t, "in_progress", got.From)
		assert.Equal(t, "done", got.To)
		assert.True(t, got.OccurredAt.Equal(occurredAt))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for transition event")
	}
}

func TestWatermillEventBus_RoutesByEventType(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)

	timeouts := make(chan *events.StatusTimeoutDue, 1)
	transitions := make(chan *events.WorkOrderTransitioned, 1)

	require.NoError(t, bus.Handle(events.StatusTimeoutDueEvent, func(ctx context.Context, event any) error {
		if e, ok := event.(*events.StatusTimeoutDue); ok {
			timeouts <- e
		}

		return nil
	}))
	require.NoError(t, bus.Handle(events.WorkOrderTransitionedEvent, func(ctx context.Context, event any) error {
		if e, ok := event.(*events.WorkOrderTransitioned); ok {
			transitions <- e
		}

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	timeout := events.NewStatusTimeoutDue(models.StatusWatch{
		ID:          "watch-1",
		TenantID:    "tenant-1",
		WorkOrderID: "wo-9",
		StatusName:  "waiting_parts",
		TriggerID:   "trg-7",
		EnteredAt:   time.Now().UTC().Add(-48 * time.Hour),
		DueAt:       time.Now().UTC(),
	})

	require.NoError(t, bus.Publish(ctx, "tenant-1/wo-9", timeout))

	select {
	case got := <-timeouts:
		assert.Equal(t, "watch-1", got.WatchID)
		assert.Equal(t, "trg-7", got.TriggerID)
		assert.Equal(t, "waiting_parts", got.StatusName)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for timeout event")
	}

	select {
	case <-transitions:
		t.Fatal("transition handler must not receive timeout events")
	default:
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

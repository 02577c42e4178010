package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/scrapeflow/scrapeflow/pkg/channels/gochannel"
	"github.com/scrapeflow/scrapeflow/pkg/eventbus"
	"github.com/scrapeflow/scrapeflow/pkg/events"
	"github.com/scrapeflow/scrapeflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub := gochannel.CreateTestChannel(watermill.NopLogger{})
	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBusRoundtrip(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := setupBus(t)
	received := make(chan any, 1)

	bus.Handle(events.WorkflowCreatedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})

	require.NoError(t, bus.Subscribe(ctx))

	err := bus.Publish(ctx, "wf-1", events.WorkflowCreated{
		BaseEvent: events.BaseEvent{
			ID:        "evt-1",
			Type:      events.WorkflowCreatedEvent,
			Timestamp: time.Now().UTC(),
		},
		WorkflowID: "wf-1",
		Name:       "Scrape products",
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		created, ok := event.(*events.WorkflowCreated)
		require.True(t, ok)
		assert.Equal(t, "wf-1", created.WorkflowID)
		assert.Equal(t, "Scrape products", created.Name)
		assert.Equal(t, events.WorkflowCreatedEvent, created.GetType())
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBusConflictsPayload(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := setupBus(t)
	received := make(chan any, 1)

	bus.Handle(events.ConflictsDetectedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})

	require.NoError(t, bus.Subscribe(ctx))

	err := bus.Publish(ctx, "conflicts", events.ConflictsDetected{
		BaseEvent: events.BaseEvent{
			ID:        "evt-2",
			Type:      events.ConflictsDetectedEvent,
			Timestamp: time.Now().UTC(),
		},
		JobCount: 2,
		Conflicts: []models.Conflict{
			{JobID: "a", Message: "Circular dependency detected"},
		},
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		detected, ok := event.(*events.ConflictsDetected)
		require.True(t, ok)
		assert.Equal(t, 2, detected.JobCount)
		require.Len(t, detected.Conflicts, 1)
		assert.Equal(t, "a", detected.Conflicts[0].JobID)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBusGenerateID(t *testing.T) {
	t.Parallel()

	bus := setupBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

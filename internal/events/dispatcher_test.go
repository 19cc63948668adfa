package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesHandlersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []string
	d.Subscribe(EventRecordAdded, func(_ context.Context, _ Event) error {
		seen = append(seen, "first")
		return nil
	})
	d.Subscribe(EventRecordAdded, func(_ context.Context, _ Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(EventRecordArchived, func(_ context.Context, _ Event) error {
		seen = append(seen, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventRecordAdded}))
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestDispatcherFailingHandlerDoesNotBlockRest(t *testing.T) {
	d := NewInMemoryDispatcher()

	var reached bool
	d.Subscribe(EventConsentGiven, func(_ context.Context, _ Event) error {
		return errors.New("handler failure")
	})
	d.Subscribe(EventConsentGiven, func(_ context.Context, _ Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventConsentGiven}))
	assert.True(t, reached)
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventRoleGranted}))
}

package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var first, second []Event
	dispatcher.Subscribe(EventTicketUpdated, func(_ context.Context, e Event) error {
		first = append(first, e)
		return nil
	})
	dispatcher.Subscribe(EventTicketUpdated, func(_ context.Context, e Event) error {
		second = append(second, e)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "evt-1", Type: EventTicketUpdated})
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "evt-1", first[0].ID)
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var reached bool
	dispatcher.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		return errors.New("handler exploded")
	})
	dispatcher.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketUpdated})
	require.NoError(t, err)
	assert.True(t, reached)
}

func TestDispatcherIgnoresUnrelatedEventTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var called bool
	dispatcher.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventType("something_else")})
	require.NoError(t, err)
	assert.False(t, called)
}

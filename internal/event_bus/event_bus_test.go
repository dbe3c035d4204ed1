package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should deliver typed payload to subscribers in order", func(t *testing.T) {
		// given
		bus := NewEventBus()
		var received []int
		SubscribeTyped(bus, ProfileUpdated, func(e EventT[ProfileUpdatedEvent]) error {
			received = append(received, e.Data.UserId)
			return nil
		})
		SubscribeTyped(bus, ProfileUpdated, func(e EventT[ProfileUpdatedEvent]) error {
			received = append(received, e.Data.UserId*10)
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), ProfileUpdated, ProfileUpdatedEvent{UserId: 7}))

		// then
		require.NoError(t, err)
		assert.Equal(t, []int{7, 70}, received)
	})

	t.Run("should ignore payloads of a different type", func(t *testing.T) {
		// given
		bus := NewEventBus()
		called := false
		SubscribeTyped(bus, UserLoggedOut, func(e EventT[UserLoggedOutEvent]) error {
			called = true
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), UserLoggedOut, "not a payload"))

		// then
		assert.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("should collect errors and recover panics", func(t *testing.T) {
		// given
		bus := NewEventBus()
		failure := errors.New("boom")
		bus.Subscribe(ProfileUpdated, func(e Event) error { return failure })
		bus.Subscribe(ProfileUpdated, func(e Event) error { panic("oops") })
		reached := false
		bus.Subscribe(ProfileUpdated, func(e Event) error { reached = true; return nil })

		// when
		err := bus.Publish(NewEvent(context.Background(), ProfileUpdated, nil))

		// then
		assert.ErrorIs(t, err, failure)
		assert.Contains(t, err.Error(), "panicked")
		assert.True(t, reached)
	})

	t.Run("should not dispatch after unsubscribe", func(t *testing.T) {
		// given
		bus := NewEventBus()
		count := 0
		unsubscribe := bus.Subscribe(ProfileUpdated, func(e Event) error { count++; return nil })
		unsubscribe()

		// when
		err := bus.Publish(NewEvent(context.Background(), ProfileUpdated, nil))

		// then
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("should refuse to publish with cancelled context", func(t *testing.T) {
		// given
		bus := NewEventBus()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		err := bus.Publish(NewEvent(ctx, ProfileUpdated, nil))

		// then
		assert.ErrorIs(t, err, context.Canceled)
	})
}

package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus(t *testing.T) {
	bus := NewBus()

	var received *Event
	var callCount int
	bus.Subscribe(func(event *Event) error {
		received = event
		callCount++
		return nil
	}, EventAppointmentCreated)

	err := bus.PublishJSON(EventAppointmentCreated, SubmissionPayload{ID: "1", Name: "Asha", Subject: "Wardrobes"})
	require.NoError(t, err)

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventAppointmentCreated, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded SubmissionPayload
	require.NoError(t, received.Decode(&decoded))
	assert.Equal(t, "Asha", decoded.Name)
	assert.Equal(t, "Wardrobes", decoded.Subject)
}

func TestBusMultipleTypesAndSubscribers(t *testing.T) {
	bus := NewBus()
	var count1, count2 int

	bus.Subscribe(func(_ *Event) error { count1++; return nil }, EventAppointmentCreated, EventQuoteCreated)
	bus.Subscribe(func(_ *Event) error { count2++; return nil }, EventQuoteCreated)

	require.NoError(t, bus.PublishJSON(EventAppointmentCreated, map[string]string{}))
	require.NoError(t, bus.PublishJSON(EventQuoteCreated, map[string]string{}))
	require.NoError(t, bus.PublishJSON("unrelated", map[string]string{}))

	assert.Equal(t, 2, count1)
	assert.Equal(t, 1, count2)
}

func TestBusHandlerError(t *testing.T) {
	bus := NewBus()
	var second bool
	bus.Subscribe(func(_ *Event) error { return errors.New("queue full") }, EventQuoteCreated)
	bus.Subscribe(func(_ *Event) error { second = true; return nil }, EventQuoteCreated)

	err := bus.PublishJSON(EventQuoteCreated, SubmissionPayload{})
	assert.EqualError(t, err, "queue full")
	assert.True(t, second, "later handlers still run")
}

func TestNilBus(t *testing.T) {
	var bus *Bus
	assert.NoError(t, bus.PublishJSON(EventQuoteCreated, SubmissionPayload{}))
}

func TestPublishJSONMarshalError(t *testing.T) {
	bus := NewBus()
	err := bus.PublishJSON(EventQuoteCreated, make(chan int))
	assert.Error(t, err)
}

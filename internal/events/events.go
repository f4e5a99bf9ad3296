package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventAppointmentCreated = "appointment_created"
	EventQuoteCreated       = "quote_created"
)

// SubmissionPayload is the snapshot of a stored submission handed to subscribers.
type SubmissionPayload struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	Subject       string `json:"subject"`
	PreferredDate string `json:"preferred_date,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
	Budget        string `json:"budget,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the JSON payload into v.
func (e *Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Handler reacts to an event.
type Handler func(event *Event) error

// Bus provides in-process pub/sub for events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for the given event types.
func (b *Bus) Subscribe(handler Handler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.subscribers[t] = append(b.subscribers[t], handler)
	}
}

// Publish notifies subscribers of the event type and returns the first handler error.
// Handlers run synchronously; a handler that does slow work should hand it off.
func (b *Bus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var firstErr error
	for _, handler := range handlers {
		if err := handler(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PublishJSON serializes the payload and publishes an event. A nil bus is a no-op.
func (b *Bus) PublishJSON(eventType string, payload any) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}

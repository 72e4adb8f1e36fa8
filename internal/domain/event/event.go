package event

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Event represents a domain event raised by the bill submission workflow
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	BillKey       string                 `json:"bill_key,omitempty"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a new domain event with auto-generated ID and timestamp
func NewEvent(eventType Type, billKey string, payload map[string]interface{}) *Event {
	id := generateID()
	return &Event{
		ID:            id,
		Type:          eventType,
		BillKey:       billKey,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: id,
	}
}

// NewEventWithCorrelation creates an event linked to an earlier one, e.g. the
// upload that a later persist belongs to
func NewEventWithCorrelation(eventType Type, billKey string, payload map[string]interface{}, correlationID string) *Event {
	evt := NewEvent(eventType, billKey, payload)
	evt.CorrelationID = correlationID
	return evt
}

// WithPayload returns a copy of the event with an added payload entry
func (e *Event) WithPayload(key string, value interface{}) *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	cp := *e
	cp.Payload = payload
	return &cp
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case string:
			return v
		case error:
			return v.Error()
		}
	}
	return ""
}

// Error returns the error message carried by a failure event
func (e *Event) Error() string {
	return e.GetPayloadString("error")
}

func generateID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(b))
}

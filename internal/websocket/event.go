package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the kind of change that happened
type EventType string

const (
	EventTypeCreated  EventType = "created"
	EventTypeUpdated  EventType = "updated"
	EventTypeDeleted  EventType = "deleted"
	EventTypeRecorded EventType = "recorded"
	EventTypeReversed EventType = "reversed"
	EventTypeUnmarked EventType = "unmarked"
	EventTypeApplied  EventType = "applied"
)

// EntityType represents the entity the event is about
type EntityType string

const (
	EntityTypePayment    EntityType = "payment"
	EntityTypeObligation EntityType = "obligation"
	EntityTypePrice      EntityType = "price"
	EntityTypeSubscriber EntityType = "subscriber"
	EntityTypeBuilding   EntityType = "building"
)

// Event is a message pushed to clients so held-open views know to
// recompute. Clients re-query; the payload is a hint, not a patch.
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"` // Combined type e.g. "payment.recorded"
	Entity    EntityType  `json:"entity"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PaymentRecorded creates a payment.recorded event
func PaymentRecorded(payload interface{}) Event {
	return NewEvent(EventTypeRecorded, EntityTypePayment, payload)
}

// PaymentReversed creates a payment.reversed event
func PaymentReversed(payload interface{}) Event {
	return NewEvent(EventTypeReversed, EntityTypePayment, payload)
}

// PaymentDeleted creates a payment.deleted event
func PaymentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypePayment, payload)
}

// ObligationsCreated creates an obligation.created event
func ObligationsCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeObligation, payload)
}

// ObligationUnmarked creates an obligation.unmarked event
func ObligationUnmarked(payload interface{}) Event {
	return NewEvent(EventTypeUnmarked, EntityTypeObligation, payload)
}

// PriceApplied creates a price.applied event
func PriceApplied(payload interface{}) Event {
	return NewEvent(EventTypeApplied, EntityTypePrice, payload)
}

// SubscriberCreated creates a subscriber.created event
func SubscriberCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeSubscriber, payload)
}

// SubscriberUpdated creates a subscriber.updated event
func SubscriberUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeSubscriber, payload)
}

// SubscriberDeleted creates a subscriber.deleted event
func SubscriberDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeSubscriber, payload)
}

// BuildingCreated creates a building.created event
func BuildingCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBuilding, payload)
}

// BuildingUpdated creates a building.updated event
func BuildingUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBuilding, payload)
}

// BuildingDeleted creates a building.deleted event
func BuildingDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBuilding, payload)
}

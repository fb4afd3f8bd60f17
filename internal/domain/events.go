package domain

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventNewOrder            EventType = "new_order"
	EventSubscriptionUpdated EventType = "subscription_updated"
)

// Event is pushed to the dashboards of one store. The set of implementations is closed:
// NewOrderEvent and SubscriptionUpdatedEvent.
type Event interface {
	Type() EventType
	isEvent()
}

// OrderNotification is the order record as the dashboard receives it. Timestamp is the
// publish time in epoch milliseconds so repeated pushes of the same order are never
// mistaken for a stale cached copy.
type OrderNotification struct {
	Order
	Items     []OrderItem `json:"items"`
	Timestamp int64       `json:"_timestamp"`
}

type NewOrderEvent struct {
	Order OrderNotification
}

func NewNewOrderEvent(order Order, items []OrderItem, at time.Time) NewOrderEvent {
	if items == nil {
		items = []OrderItem{}
	}
	return NewOrderEvent{Order: OrderNotification{
		Order:     order,
		Items:     items,
		Timestamp: at.UnixMilli(),
	}}
}

func (NewOrderEvent) Type() EventType { return EventNewOrder }
func (NewOrderEvent) isEvent()        {}

func (e NewOrderEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  EventType         `json:"type"`
		Order OrderNotification `json:"order"`
	}{e.Type(), e.Order})
}

type SubscriptionNotification struct {
	ProductLimit       int                `json:"productLimit"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
}

type SubscriptionUpdatedEvent struct {
	Data SubscriptionNotification
}

func (SubscriptionUpdatedEvent) Type() EventType { return EventSubscriptionUpdated }
func (SubscriptionUpdatedEvent) isEvent()        {}

func (e SubscriptionUpdatedEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type EventType                `json:"type"`
		Data SubscriptionNotification `json:"data"`
	}{e.Type(), e.Data})
}

// Package replication copies order changes from the authoritative backend to
// the spreadsheet, either directly or through a queue and the worker.
package replication

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ridersklan/preorderflow/internal/orders"
)

// Event types.
const (
	TypeOrderCreated  = "order.created"
	TypeStatusChanged = "order.status_changed"
	TypeOrderDeleted  = "order.deleted"
)

// Event is the payload sent from API -> SQS -> worker.
type Event struct {
	Type          string        `json:"type"`
	OrderID       string        `json:"orderId"`
	Status        string        `json:"status,omitempty"`
	Order         *orders.Order `json:"order,omitempty"`
	CorrelationID string        `json:"correlationId,omitempty"`
}

// DecodeEvent parses a queue message body and checks it is usable.
func DecodeEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("invalid event body: %w", err)
	}
	if ev.OrderID == "" {
		return Event{}, fmt.Errorf("event %q without orderId", ev.Type)
	}
	switch ev.Type {
	case TypeOrderCreated:
		if ev.Order == nil {
			return Event{}, fmt.Errorf("created event for %s carries no order", ev.OrderID)
		}
	case TypeStatusChanged:
		if ev.Status == "" {
			return Event{}, fmt.Errorf("status event for %s carries no status", ev.OrderID)
		}
	case TypeOrderDeleted:
	default:
		return Event{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return ev, nil
}

// Replicator is told about every successful write.
type Replicator interface {
	OrderCreated(ctx context.Context, o orders.Order) error
	StatusChanged(ctx context.Context, id, status string) error
	OrderDeleted(ctx context.Context, id string) error
}

type correlationKey struct{}

// WithCorrelationID attaches the request id that events should carry.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// Noop drops every event.
type Noop struct{}

func (Noop) OrderCreated(context.Context, orders.Order) error   { return nil }
func (Noop) StatusChanged(context.Context, string, string) error { return nil }
func (Noop) OrderDeleted(context.Context, string) error         { return nil }

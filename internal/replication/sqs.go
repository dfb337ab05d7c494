package replication

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ridersklan/preorderflow/internal/orders"
)

// Sender enqueues a message body with string attributes.
type Sender interface {
	Send(ctx context.Context, body string, attributes map[string]string) error
}

// SQSReplicator publishes events for the worker to apply.
type SQSReplicator struct {
	sender Sender
}

var _ Replicator = (*SQSReplicator)(nil)

func NewSQSReplicator(sender Sender) *SQSReplicator {
	return &SQSReplicator{sender: sender}
}

func (r *SQSReplicator) publish(ctx context.Context, ev Event) error {
	ev.CorrelationID = correlationID(ctx)
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	attrs := map[string]string{
		"event_type":     ev.Type,
		"order_id":       ev.OrderID,
		"correlation_id": ev.CorrelationID,
	}
	if err := r.sender.Send(ctx, string(body), attrs); err != nil {
		return fmt.Errorf("publish %s for %s: %w", ev.Type, ev.OrderID, err)
	}
	return nil
}

func (r *SQSReplicator) OrderCreated(ctx context.Context, o orders.Order) error {
	return r.publish(ctx, Event{Type: TypeOrderCreated, OrderID: o.ID, Status: o.Status, Order: &o})
}

func (r *SQSReplicator) StatusChanged(ctx context.Context, id, status string) error {
	return r.publish(ctx, Event{Type: TypeStatusChanged, OrderID: id, Status: status})
}

func (r *SQSReplicator) OrderDeleted(ctx context.Context, id string) error {
	return r.publish(ctx, Event{Type: TypeOrderDeleted, OrderID: id})
}

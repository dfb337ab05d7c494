package replication

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/orders"
)

// Sheet is the write side of the spreadsheet client, plus the lookup that
// keeps appends from duplicating rows.
type Sheet interface {
	HasOrder(ctx context.Context, id string) (bool, error)
	AppendOrder(ctx context.Context, o orders.Order) error
	UpdateOrderStatus(ctx context.Context, id, status string) error
}

// SheetReplicator writes changes straight to the spreadsheet. The sheet
// script cannot delete rows, so deletes are only logged.
type SheetReplicator struct {
	sheet Sheet
	log   *zap.Logger
}

var _ Replicator = (*SheetReplicator)(nil)

func NewSheetReplicator(sheet Sheet, log *zap.Logger) *SheetReplicator {
	if log == nil {
		log = zap.NewNop()
	}
	return &SheetReplicator{sheet: sheet, log: log}
}

// OrderCreated appends a row unless the sheet already has one for the id,
// so a redelivered event is harmless.
func (r *SheetReplicator) OrderCreated(ctx context.Context, o orders.Order) error {
	exists, err := r.sheet.HasOrder(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("look up %s in sheet: %w", o.ID, err)
	}
	if exists {
		r.log.Info("order already in sheet, skipping append", zap.String("order_id", o.ID))
		return nil
	}
	if err := r.sheet.AppendOrder(ctx, o); err != nil {
		return fmt.Errorf("append %s to sheet: %w", o.ID, err)
	}
	return nil
}

func (r *SheetReplicator) StatusChanged(ctx context.Context, id, status string) error {
	if err := r.sheet.UpdateOrderStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update %s in sheet: %w", id, err)
	}
	return nil
}

func (r *SheetReplicator) OrderDeleted(ctx context.Context, id string) error {
	r.log.Info("sheet rows cannot be deleted, skipping", zap.String("order_id", id))
	return nil
}

// Apply dispatches a decoded event.
func (r *SheetReplicator) Apply(ctx context.Context, ev Event) error {
	switch ev.Type {
	case TypeOrderCreated:
		o := *ev.Order
		if o.Status == "" {
			o.Status = ev.Status
		}
		return r.OrderCreated(ctx, o)
	case TypeStatusChanged:
		return r.StatusChanged(ctx, ev.OrderID, ev.Status)
	case TypeOrderDeleted:
		return r.OrderDeleted(ctx, ev.OrderID)
	}
	return fmt.Errorf("unknown event type %q", ev.Type)
}

package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/replication"
)

// Applier applies one replication event to the spreadsheet.
type Applier interface {
	Apply(ctx context.Context, ev replication.Event) error
}

// Processor handles SQS batches of replication events.
type Processor struct {
	applier Applier
	log     *zap.Logger
}

func NewProcessor(applier Applier, log *zap.Logger) *Processor {
	return &Processor{applier: applier, log: log}
}

// Handle applies every message and reports the failed ones as batch item
// failures, so SQS redelivers only those; repeated failures end in the DLQ.
// The event source mapping must enable ReportBatchItemFailures.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	p.log.Debug("received batch", zap.Int("messages", len(ev.Records)))
	resp := events.SQSEventResponse{BatchItemFailures: []events.SQSBatchItemFailure{}}
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.log.Error("worker error", zap.String("message_id", rec.MessageId), zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	if n := len(resp.BatchItemFailures); n > 0 {
		p.log.Warn("batch finished with failures", zap.Int("failed", n), zap.Int("messages", len(ev.Records)))
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	ev, err := replication.DecodeEvent([]byte(rec.Body))
	if err != nil {
		return err
	}
	log := p.log.With(
		zap.String("type", ev.Type),
		zap.String("order_id", ev.OrderID),
		zap.String("correlation_id", ev.CorrelationID),
	)
	log.Info("applying event")

	if err := p.applier.Apply(ctx, ev); err != nil {
		return fmt.Errorf("apply %s for %s: %w", ev.Type, ev.OrderID, err)
	}
	log.Info("event applied")
	return nil
}

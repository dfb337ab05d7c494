package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/config"
	"github.com/ridersklan/preorderflow/internal/logger"
	"github.com/ridersklan/preorderflow/internal/replication"
	"github.com/ridersklan/preorderflow/internal/sheets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	sheet := sheets.New(cfg.SheetsURL, cfg.SheetsAPIKey, cfg.SheetsTimeout)
	if !sheet.Configured() {
		log.Fatal("GOOGLE_SHEETS_API_URL is required by the worker")
	}
	p := NewProcessor(replication.NewSheetReplicator(sheet, log.Named("replication")), log)

	// RUN_LOCAL=true replays one message from LOCAL_SQS_BODY
	if cfg.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"type":"order.status_changed","orderId":"local-order-1","status":"paid"}`
		}
		ev := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "local", Body: body}}}
		resp, err := p.Handle(context.Background(), ev)
		if err != nil {
			log.Fatal("local handler error", zap.Error(err))
		}
		if len(resp.BatchItemFailures) > 0 {
			log.Fatal("local message failed", zap.String("message_id", resp.BatchItemFailures[0].ItemIdentifier))
		}
		return
	}

	lambda.Start(p.Handle)
}

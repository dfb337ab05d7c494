package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/auth"
	"github.com/ridersklan/preorderflow/internal/aws"
	"github.com/ridersklan/preorderflow/internal/config"
	"github.com/ridersklan/preorderflow/internal/dynamostore"
	"github.com/ridersklan/preorderflow/internal/filestore"
	"github.com/ridersklan/preorderflow/internal/handlers"
	"github.com/ridersklan/preorderflow/internal/idempotency"
	"github.com/ridersklan/preorderflow/internal/metrics"
	"github.com/ridersklan/preorderflow/internal/orders"
	"github.com/ridersklan/preorderflow/internal/replication"
	"github.com/ridersklan/preorderflow/internal/sheets"
)

// awsNeeds maps the configured features to the AWS services they use.
func awsNeeds(cfg *config.Config) aws.Needs {
	return aws.Needs{
		DynamoDB:   cfg.StorageBackend == config.BackendDynamoDB || cfg.IdempotencyTable != "",
		SQS:        cfg.QueueURL != "",
		CloudWatch: cfg.MetricsNamespace != "",
	}
}

func buildHandlerConfig(ctx context.Context, cfg *config.Config, log *zap.Logger) (handlers.HandlerConfig, error) {
	clients := &aws.Clients{}
	if needs := awsNeeds(cfg); needs.Any() {
		c, err := aws.NewClients(ctx, needs)
		if err != nil {
			return handlers.HandlerConfig{}, fmt.Errorf("init aws clients: %w", err)
		}
		clients = c
	}

	hcfg := handlers.HandlerConfig{
		Backend:       cfg.StorageBackend,
		AdminPassword: cfg.AdminPassword,
		DemoOrders:    cfg.DemoOrders,
		Env:           cfg.Env,
		Log:           log,
	}

	switch cfg.StorageBackend {
	case config.BackendDynamoDB:
		// the table is shared by every Lambda instance
		backend := dynamostore.NewStore(clients.DynamoDB, cfg.OrdersTable)
		hcfg.Repo = orders.NewRepository(backend, log.Named("orders"), orders.WithoutCache())
	default:
		fs := filestore.New(cfg.StorageDirs, log.Named("filestore"))
		hcfg.Storage = fs
		hcfg.Repo = orders.NewRepository(fs, log.Named("orders"))
	}

	sheet := sheets.New(cfg.SheetsURL, cfg.SheetsAPIKey, cfg.SheetsTimeout)
	hcfg.Sheets = sheet

	switch {
	case cfg.QueueURL != "":
		hcfg.Replicator = replication.NewSQSReplicator(aws.NewPublisher(clients.SQS, cfg.QueueURL))
	case sheet.Configured():
		hcfg.Replicator = replication.NewSheetReplicator(sheet, log.Named("replication"))
	default:
		hcfg.Replicator = replication.Noop{}
	}

	if cfg.MetricsNamespace != "" {
		hcfg.Metrics = metrics.NewCloudWatch(clients.CloudWatch, cfg.MetricsNamespace, cfg.StorageBackend)
	} else {
		hcfg.Metrics = metrics.Noop{}
	}

	if cfg.IdempotencyTable != "" {
		hcfg.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL)
	}

	if cfg.AuthSecret != "" {
		v := auth.NewJWTVerifier(cfg.AuthSecret, cfg.TokenTTL)
		hcfg.Verifier, hcfg.Issuer = v, v
	} else {
		v := auth.NewPrefixVerifier()
		hcfg.Verifier, hcfg.Issuer = v, v
	}

	log.Info("dependencies wired",
		zap.String("backend", cfg.StorageBackend),
		zap.Bool("sheets", sheet.Configured()),
		zap.Bool("queue", cfg.QueueURL != ""),
		zap.Bool("idempotency", hcfg.Idempotency != nil),
		zap.Bool("signed_tokens", cfg.AuthSecret != ""),
	)
	return hcfg, nil
}

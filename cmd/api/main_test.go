package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/auth"
	"github.com/ridersklan/preorderflow/internal/aws"
	"github.com/ridersklan/preorderflow/internal/config"
	"github.com/ridersklan/preorderflow/internal/replication"
)

func TestBuildHandlerConfig_FileBackendNeedsNoAWS(t *testing.T) {
	cfg := &config.Config{
		StorageBackend: config.BackendFile,
		StorageDirs:    []string{t.TempDir()},
		DemoOrders:     true,
	}
	assert.False(t, awsNeeds(cfg).Any())

	hcfg, err := buildHandlerConfig(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, hcfg.Repo)
	assert.NotNil(t, hcfg.Storage)
	assert.True(t, hcfg.Repo.Cached())
	assert.Nil(t, hcfg.Idempotency)
	assert.IsType(t, replication.Noop{}, hcfg.Replicator)
	assert.IsType(t, &auth.PrefixVerifier{}, hcfg.Verifier)
}

func TestBuildHandlerConfig_SheetAndSecret(t *testing.T) {
	cfg := &config.Config{
		StorageBackend: config.BackendFile,
		StorageDirs:    []string{t.TempDir()},
		SheetsURL:      "https://sheet.example.com/exec",
		AuthSecret:     "secret",
	}
	hcfg, err := buildHandlerConfig(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &replication.SheetReplicator{}, hcfg.Replicator)
	assert.IsType(t, &auth.JWTVerifier{}, hcfg.Verifier)
}

func TestBuildHandlerConfig_DynamoBackendReadsThrough(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("AWS_ENDPOINT_OVERRIDE", "http://localhost:4566")
	cfg := &config.Config{
		StorageBackend: config.BackendDynamoDB,
		OrdersTable:    "orders",
	}
	hcfg, err := buildHandlerConfig(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, hcfg.Repo.Cached(), "instances share the table")
	assert.Nil(t, hcfg.Storage)
}

func TestAWSNeeds(t *testing.T) {
	assert.Equal(t, aws.Needs{DynamoDB: true}, awsNeeds(&config.Config{StorageBackend: config.BackendDynamoDB}))
	assert.Equal(t, aws.Needs{DynamoDB: true}, awsNeeds(&config.Config{IdempotencyTable: "t"}))
	assert.Equal(t, aws.Needs{SQS: true}, awsNeeds(&config.Config{QueueURL: "q"}))
	assert.Equal(t, aws.Needs{CloudWatch: true}, awsNeeds(&config.Config{MetricsNamespace: "ns"}))
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hcfg, err := buildHandlerConfig(context.Background(), &config.Config{StorageDirs: []string{t.TempDir()}}, zap.NewNop())
	require.NoError(t, err)
	r := setupRouter(hcfg, zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

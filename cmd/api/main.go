package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/config"
	"github.com/ridersklan/preorderflow/internal/handlers"
	"github.com/ridersklan/preorderflow/internal/logger"
)

func setupRouter(cfg handlers.HandlerConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logger.RequestID(), logger.RequestLogger(log), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterOrdersRoutes(r, cfg)

	return r
}

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

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	hcfg, err := buildHandlerConfig(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to wire dependencies", zap.Error(err))
	}
	r := setupRouter(hcfg, log)

	if cfg.RunLocal {
		log.Info("running local server", zap.String("addr", cfg.Addr), zap.String("backend", cfg.StorageBackend))
		if err := r.Run(cfg.Addr); err != nil {
			log.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

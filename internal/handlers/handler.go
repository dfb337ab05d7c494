// Package handlers exposes the order API over gin. Every endpoint is served
// under both /.netlify/functions/<name> and /api/<name>.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/auth"
	"github.com/ridersklan/preorderflow/internal/filestore"
	"github.com/ridersklan/preorderflow/internal/idempotency"
	"github.com/ridersklan/preorderflow/internal/logger"
	"github.com/ridersklan/preorderflow/internal/metrics"
	"github.com/ridersklan/preorderflow/internal/orders"
	"github.com/ridersklan/preorderflow/internal/replication"
	"github.com/ridersklan/preorderflow/internal/validation"
)

// Prefixes the dashboard tries in order.
var Prefixes = []string{"/.netlify/functions", "/api"}

// StorageInspector is implemented by backends that live on a filesystem.
type StorageInspector interface {
	Info() filestore.Info
	Probe() map[string]filestore.DirReport
}

// SheetReader is the read side of the spreadsheet client.
type SheetReader interface {
	Configured() bool
	GetOrders(ctx context.Context) ([]orders.Order, error)
	GetOrder(ctx context.Context, id string) (*orders.Order, error)
}

// IdempotencyStore remembers Idempotency-Key headers of submit-order.
type IdempotencyStore interface {
	CreateIfNotExists(ctx context.Context, key, fingerprint string) (bool, error)
	Get(ctx context.Context, key string) (*idempotency.Record, error)
	MarkDone(ctx context.Context, key, orderID, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
	Release(ctx context.Context, key string) error
}

// HandlerConfig groups dependencies for the order API. Repo and Verifier
// are required; the rest fall back to no-ops when nil.
type HandlerConfig struct {
	Repo        *orders.Repository
	Backend     string
	Storage     StorageInspector
	Sheets      SheetReader
	Replicator  replication.Replicator
	Metrics     metrics.Recorder
	Idempotency IdempotencyStore

	Verifier      auth.Verifier
	Issuer        auth.Issuer
	AdminPassword string

	DemoOrders bool
	Env        string
	Log        *zap.Logger
}

type handler struct {
	cfg      HandlerConfig
	validate *validatorv10.Validate
	log      *zap.Logger
	nowFunc  func() time.Time
}

func newHandler(cfg HandlerConfig) *handler {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Replicator == nil {
		cfg.Replicator = replication.Noop{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Noop{}
	}
	return &handler{
		cfg:      cfg,
		validate: validation.New(),
		log:      cfg.Log,
		nowFunc:  time.Now,
	}
}

// RegisterOrdersRoutes registers every order endpoint on r, along with CORS
// and the 405 fallback.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	h := newHandler(cfg)
	h.register(r)
}

func (h *handler) register(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.Use(CORS())
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed"})
	})

	anyUser := auth.RequireBearer(h.cfg.Verifier, false)
	adminOnly := auth.RequireBearer(h.cfg.Verifier, true)

	for _, prefix := range Prefixes {
		g := r.Group(prefix)
		route(g, "/submit-order", []string{http.MethodPost}, h.submitOrder)
		route(g, "/get-orders", []string{http.MethodGet}, anyUser, h.getOrders)
		route(g, "/admin-orders", []string{http.MethodGet}, anyUser, h.adminOrders)
		route(g, "/get-order", []string{http.MethodGet}, anyUser, h.getOrder)
		route(g, "/update-order", []string{http.MethodPost}, anyUser, h.updateOrder)
		route(g, "/delete-order", []string{http.MethodPost, http.MethodDelete}, adminOnly, h.deleteOrder)
		route(g, "/sync-local-orders", []string{http.MethodPost}, h.syncLocalOrders)
		route(g, "/admin-reset-database", []string{http.MethodPost}, anyUser, h.resetDatabase)
		route(g, "/admin-generate-test-orders", []string{http.MethodPost}, anyUser, h.generateTestOrders)
		route(g, "/check-storage", []string{http.MethodGet}, h.checkStorage)
		route(g, "/sheet-orders", []string{http.MethodGet}, anyUser, h.sheetOrders)
		route(g, "/admin-token", []string{http.MethodPost}, h.adminToken)
	}
}

// route binds path for each method plus an OPTIONS preflight, which the
// CORS middleware answers before this handler runs.
func route(g *gin.RouterGroup, path string, methods []string, chain ...gin.HandlerFunc) {
	for _, m := range methods {
		g.Handle(m, path, chain...)
	}
	g.OPTIONS(path, func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

// CORS allows any origin; preflight requests end here with 204.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Idempotency-Key, "+logger.RequestIDHeader)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// ctx carries the request id through to replication events.
func (h *handler) ctx(c *gin.Context) context.Context {
	return replication.WithCorrelationID(c.Request.Context(), logger.RequestIDFrom(c))
}

func (h *handler) isoNow() string {
	return orders.FormatDate(h.nowFunc())
}

func (h *handler) serverError(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.Error(err), zap.String("request_id", logger.RequestIDFrom(c)))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "details": err.Error()})
}

func (h *handler) count(ctx context.Context, name string, n int) {
	if err := h.cfg.Metrics.Count(ctx, name, n); err != nil {
		h.log.Warn("metric not recorded", zap.String("metric", name), zap.Error(err))
	}
}

func (h *handler) replicated(op, id string, err error) {
	if err != nil {
		h.log.Warn("replication failed", zap.String("op", op), zap.String("order_id", id), zap.Error(err))
	}
}

package handlers

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/demo"
	"github.com/ridersklan/preorderflow/internal/filestore"
	"github.com/ridersklan/preorderflow/internal/metrics"
	"github.com/ridersklan/preorderflow/internal/orders"
	"github.com/ridersklan/preorderflow/internal/sheets"
	"github.com/ridersklan/preorderflow/internal/validation"
)

// syncDetail is the per-order outcome of sync-local-orders.
type syncDetail struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type syncResults struct {
	Total      int          `json:"total"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Details    []syncDetail `json:"details"`
}

func (h *handler) syncLocalOrders(c *gin.Context) {
	var req validation.SyncOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Orders == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing orders array"})
		return
	}

	ctx := h.ctx(c)
	res := syncResults{Total: len(req.Orders), Details: []syncDetail{}}
	fail := func(id, msg string) {
		if id == "" {
			id = "unknown"
		}
		res.Failed++
		res.Details = append(res.Details, syncDetail{ID: id, Error: msg})
	}

	for _, raw := range req.Orders {
		var o orders.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			fail("", "Invalid order data")
			continue
		}
		check := validation.NewSyncOrder(o, raw)
		if err := h.validate.Struct(check); err != nil {
			fail(o.ID, "Invalid order data")
			continue
		}
		saved, created, err := h.cfg.Repo.SaveOrder(ctx, o)
		if err != nil {
			h.log.Error("sync order failed", zap.String("order_id", o.ID), zap.Error(err))
			fail(o.ID, err.Error())
			continue
		}
		if created {
			h.replicated("create", saved.ID, h.cfg.Replicator.OrderCreated(ctx, saved))
		}
		res.Successful++
		res.Details = append(res.Details, syncDetail{ID: saved.ID, Success: true})
	}
	h.count(ctx, metrics.OrdersSynced, res.Successful)
	h.log.Info("local orders synced", zap.Int("successful", res.Successful), zap.Int("failed", res.Failed))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Sync completed: %d orders synced, %d failed", res.Successful, res.Failed),
		"results": res,
	})
}

// bindOptional decodes a body that may legitimately be empty.
func bindOptional(c *gin.Context, out interface{}) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (h *handler) resetDatabase(c *gin.Context) {
	var req validation.ResetRequest
	if err := bindOptional(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	if !req.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Confirmation required",
			"message": `Please confirm the database reset by sending {"confirm": true}`,
		})
		return
	}
	if err := h.cfg.Repo.ResetDatabase(c.Request.Context()); err != nil {
		h.serverError(c, "Failed to reset database", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order database has been reset"})
}

func (h *handler) generateTestOrders(c *gin.Context) {
	var req validation.GenerateOrdersRequest
	if err := bindOptional(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	ctx := h.ctx(c)
	generated := demo.TestOrders(req.Count, h.nowFunc(), nil)
	saved := make([]orders.Order, 0, len(generated))
	for _, o := range generated {
		s, created, err := h.cfg.Repo.SaveOrder(ctx, o)
		if err != nil {
			h.serverError(c, "Failed to generate test orders", err)
			return
		}
		if created {
			h.replicated("create", s.ID, h.cfg.Replicator.OrderCreated(ctx, s))
		}
		saved = append(saved, s)
	}
	h.count(ctx, metrics.OrdersSubmitted, len(saved))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Generated %d test orders", len(saved)),
		"count":   len(saved),
		"orders":  saved,
	})
}

func (h *handler) checkStorage(c *gin.Context) {
	cwd, _ := os.Getwd()
	env := gin.H{
		"goVersion": runtime.Version(),
		"platform":  runtime.GOOS,
		"arch":      runtime.GOARCH,
		"env":       h.cfg.Env,
		"backend":   h.cfg.Backend,
		"cwd":       cwd,
	}
	resp := gin.H{
		"success":      true,
		"message":      "Storage paths checked successfully",
		"timestamp":    h.isoNow(),
		"environment":  env,
		"storagePaths": map[string]filestore.DirReport{},
	}
	if h.cfg.Storage != nil {
		resp["storagePaths"] = h.cfg.Storage.Probe()
		resp["store"] = h.cfg.Storage.Info()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) sheetOrders(c *gin.Context) {
	if h.cfg.Sheets == nil || !h.cfg.Sheets.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Spreadsheet not configured",
			"message": "Set GOOGLE_SHEETS_API_URL to read orders from the spreadsheet",
		})
		return
	}
	ctx := c.Request.Context()

	if id := c.Query("orderId"); id != "" {
		o, err := h.cfg.Sheets.GetOrder(ctx, id)
		if errors.Is(err, sheets.ErrNotFound) {
			c.JSON(http.StatusNotFound, errNotFound)
			return
		}
		if err != nil {
			h.serverError(c, "Failed to fetch order from spreadsheet", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
		return
	}

	list, err := h.cfg.Sheets.GetOrders(ctx)
	if err != nil {
		h.serverError(c, "Failed to fetch orders from spreadsheet", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  list,
		"stats":   orders.ComputeStats(list),
	})
}

func (h *handler) adminToken(c *gin.Context) {
	if h.cfg.AdminPassword == "" || h.cfg.Issuer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	var req validation.AdminTokenRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.AdminPassword)) != 1 {
		h.log.Warn("admin token refused")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": "Invalid password"})
		return
	}
	token, err := h.cfg.Issuer.Issue("admin", true)
	if err != nil {
		h.serverError(c, "Failed to issue token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/demo"
	"github.com/ridersklan/preorderflow/internal/idempotency"
	"github.com/ridersklan/preorderflow/internal/metrics"
	"github.com/ridersklan/preorderflow/internal/orders"
	"github.com/ridersklan/preorderflow/internal/validation"
)

// IdempotencyKeyHeader lets clients retry submit-order safely.
const IdempotencyKeyHeader = "Idempotency-Key"

var errNotFound = gin.H{"error": "Order not found", "message": "No order exists with this ID"}

func (h *handler) submitOrder(c *gin.Context) {
	key := c.GetHeader(IdempotencyKeyHeader)
	if key == "" || h.cfg.Idempotency == nil {
		if resp, ok := h.createOrder(c); ok {
			c.JSON(http.StatusOK, resp)
		}
		return
	}
	h.submitIdempotent(c, key)
}

// createOrder validates the body and saves the order. On failure it has
// already written the error response.
func (h *handler) createOrder(c *gin.Context) (gin.H, bool) {
	var req validation.SubmitOrderRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return nil, false
	}

	ctx := h.ctx(c)
	saved, created, err := h.cfg.Repo.SaveOrder(ctx, req.Order())
	if err != nil {
		h.serverError(c, "Failed to process order", err)
		return nil, false
	}
	if created {
		h.log.Info("order submitted", zap.String("order_id", saved.ID), zap.String("customer", saved.Customer))
		h.replicated("create", saved.ID, h.cfg.Replicator.OrderCreated(ctx, saved))
		h.count(ctx, metrics.OrdersSubmitted, 1)
	}
	return gin.H{
		"success": true,
		"message": "Order submitted successfully",
		"orderId": saved.ID,
	}, true
}

func (h *handler) submitIdempotent(c *gin.Context, key string) {
	ctx := c.Request.Context()
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	fp := idempotency.Fingerprint(body)

	created, err := h.cfg.Idempotency.CreateIfNotExists(ctx, key, fp)
	if err != nil {
		h.serverError(c, "Idempotency check failed", err)
		return
	}
	if !created {
		rec, err := h.cfg.Idempotency.Get(ctx, key)
		if err != nil {
			h.serverError(c, "Idempotency check failed", err)
			return
		}
		if rec == nil {
			// expired or released since the claim failed: try once more
			if created, err = h.cfg.Idempotency.CreateIfNotExists(ctx, key, fp); err != nil {
				h.serverError(c, "Idempotency check failed", err)
				return
			}
			if !created {
				c.JSON(http.StatusConflict, gin.H{"error": "Request already in progress"})
				return
			}
			h.submitClaimed(c, key)
			return
		}
		if rec.Fingerprint != fp {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "Idempotency key reused",
				"message": "This Idempotency-Key was already used with a different request body",
			})
			return
		}
		switch rec.Status {
		case idempotency.StatusDone:
			c.Header("Idempotent-Replayed", "true")
			c.Data(rec.ResponseStatus, "application/json; charset=utf-8", []byte(rec.ResponseBody))
			return
		case idempotency.StatusInProgress:
			c.JSON(http.StatusAccepted, gin.H{"success": false, "message": "Request already in progress"})
			return
		}
		// the earlier attempt failed: free the key and claim it for this one
		if err := h.cfg.Idempotency.Release(ctx, key); err != nil {
			h.serverError(c, "Idempotency check failed", err)
			return
		}
		if created, err = h.cfg.Idempotency.CreateIfNotExists(ctx, key, fp); err != nil || !created {
			c.JSON(http.StatusConflict, gin.H{"error": "Request already in progress"})
			return
		}
	}
	h.submitClaimed(c, key)
}

// submitClaimed creates the order once this request holds key.
func (h *handler) submitClaimed(c *gin.Context, key string) {
	ctx := c.Request.Context()
	resp, ok := h.createOrder(c)
	if !ok {
		note := fmt.Sprintf("status %d", c.Writer.Status())
		if err := h.cfg.Idempotency.MarkFailed(ctx, key, note); err != nil {
			h.log.Warn("idempotency record not marked failed", zap.String("key", key), zap.Error(err))
		}
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		h.serverError(c, "Failed to process order", err)
		return
	}
	if err := h.cfg.Idempotency.MarkDone(ctx, key, fmt.Sprint(resp["orderId"]), string(raw), http.StatusOK); err != nil {
		h.log.Warn("idempotency record not marked done", zap.String("key", key), zap.Error(err))
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func (h *handler) getOrders(c *gin.Context) {
	list, err := h.cfg.Repo.GetAllOrders(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to retrieve orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  list,
		"stats":   orders.ComputeStats(list),
	})
}

func (h *handler) adminOrders(c *gin.Context) {
	list, err := h.cfg.Repo.GetAllOrders(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to retrieve orders", err)
		return
	}
	stats := orders.ComputeStats(list)
	list = orders.Filter(list, c.Query("status"), c.Query("search"))
	orders.SortNewestFirst(list)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": h.isoNow(),
		"orders":    list,
		"stats":     stats,
	})
}

func (h *handler) getOrder(c *gin.Context) {
	id := c.Query("orderId")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order ID"})
		return
	}
	o, err := h.cfg.Repo.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		h.serverError(c, "Failed to fetch order", err)
		return
	}
	if o == nil && h.cfg.DemoOrders && demo.IsServerID(id) {
		synthetic := demo.ServerOrder(id, h.nowFunc())
		o = &synthetic
	}
	if o == nil {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
}

func (h *handler) updateOrder(c *gin.Context) {
	var req validation.UpdateOrderRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	id := string(req.OrderID)

	ctx := h.ctx(c)
	o, err := h.cfg.Repo.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		h.serverError(c, "Failed to update order", err)
		return
	}
	if o == nil {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	h.log.Info("order status updated", zap.String("order_id", id), zap.String("status", req.Status))
	h.replicated("status", id, h.cfg.Replicator.StatusChanged(ctx, id, req.Status))
	h.count(ctx, metrics.OrderStatusUpdated, 1)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated",
		"orderId": id,
		"status":  req.Status,
		"order":   o,
	})
}

// deleteOrder takes the id from ?orderId= or from a {"orderId"} body.
func (h *handler) deleteOrder(c *gin.Context) {
	id := c.Query("orderId")
	if id == "" {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			var req validation.DeleteOrderRequest
			if err := json.Unmarshal(body, &req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
				return
			}
			id = string(req.OrderID)
		}
	}
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order ID"})
		return
	}

	ctx := h.ctx(c)
	ok, err := h.cfg.Repo.DeleteOrder(ctx, id)
	if err != nil {
		h.serverError(c, "Failed to delete order", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	h.log.Info("order deleted", zap.String("order_id", id))
	h.replicated("delete", id, h.cfg.Replicator.OrderDeleted(ctx, id))
	h.count(ctx, metrics.OrdersDeleted, 1)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Order %s has been deleted successfully", id),
		"orderId": id,
	})
}

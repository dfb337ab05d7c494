package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/demo"
	"github.com/ridersklan/preorderflow/internal/orders"
)

// DefaultRefresh is how often Watch reloads.
const DefaultRefresh = 5 * time.Minute

// ErrLoadFailed means neither the server nor the local cache had orders.
var ErrLoadFailed = errors.New("failed to load orders")

// View is one load of the dashboard.
type View struct {
	Orders []orders.Order
	// FromServer is false when only the local cache could be shown.
	FromServer bool
	Warning    string
	LoadedAt   time.Time
}

// Dashboard ties the API client to the local cache.
type Dashboard struct {
	client  *Client
	local   *LocalStore
	log     *zap.Logger
	nowFunc func() time.Time
}

func New(client *Client, local *LocalStore, log *zap.Logger) *Dashboard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dashboard{client: client, local: local, log: log, nowFunc: time.Now}
}

// Load fetches admin-orders, then get-orders, and merges the result with the
// local cache. When the server is unreachable the local orders are shown
// with a warning.
func (d *Dashboard) Load(ctx context.Context) (View, error) {
	local := d.local.Orders()
	deleted := d.local.Deleted()
	now := d.nowFunc()

	server, err := d.client.AdminOrders(ctx)
	if err != nil {
		d.log.Warn("admin-orders failed, trying get-orders", zap.Error(err))
		server, err = d.client.GetOrders(ctx)
	}
	if err == nil {
		return View{Orders: Merge(server, local, deleted), FromServer: true, LoadedAt: now}, nil
	}

	d.log.Warn("server unreachable, showing local orders", zap.Error(err))
	if len(local) == 0 {
		return View{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return View{
		Orders:   Merge(nil, local, deleted),
		Warning:  "Could not reach the server. Showing locally saved orders only.",
		LoadedAt: now,
	}, nil
}

// SyncLocalOrders uploads the local cache.
func (d *Dashboard) SyncLocalOrders(ctx context.Context) (SyncResults, error) {
	local := d.local.Orders()
	if len(local) == 0 {
		return SyncResults{Details: []SyncDetail{}}, nil
	}
	res, err := d.client.SyncLocalOrders(ctx, local)
	if err != nil {
		return SyncResults{}, err
	}
	d.log.Info("local orders synced", zap.Int("successful", res.Successful), zap.Int("failed", res.Failed))
	return res, nil
}

// ClearDeletedServerOrders makes previously hidden server orders visible again.
func (d *Dashboard) ClearDeletedServerOrders() error {
	return d.local.ClearDeleted()
}

// AddLocal records an order in the local cache only, as the storefront does
// right after submitting it.
func (d *Dashboard) AddLocal(o orders.Order) (orders.Order, error) {
	now := d.nowFunc()
	if o.ID == "" {
		o.ID = orders.NewID(now)
	}
	if o.Timestamp == 0 {
		o.Timestamp = now.UnixMilli()
		o.Date = orders.FormatDate(now)
	}
	if o.Status == "" {
		o.Status = orders.StatusPreordered
	}
	if o.Source == "" {
		o.Source = orders.SourceLocal
	}
	return o, d.local.AddOrder(o)
}

// UpdateStatus changes the status on the server and in the local cache. It
// succeeds as long as one of them knew the order.
func (d *Dashboard) UpdateStatus(ctx context.Context, id, status string) error {
	if !orders.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	serverErr := d.client.UpdateStatus(ctx, id, status)
	found, err := d.local.UpdateStatus(id, status)
	if err != nil {
		return err
	}
	if serverErr != nil && !found {
		return serverErr
	}
	if serverErr != nil {
		d.log.Warn("status changed locally only", zap.String("order_id", id), zap.Error(serverErr))
	}
	return nil
}

// Delete removes the order on the server and from the local cache. Demo
// server orders cannot be deleted on the server, so they are hidden locally.
func (d *Dashboard) Delete(ctx context.Context, id string) error {
	serverErr := d.client.DeleteOrder(ctx, id)
	found, err := d.local.Remove(id)
	if err != nil {
		return err
	}
	if demo.IsServerID(id) {
		return d.local.MarkDeleted(id)
	}
	if serverErr != nil && !found {
		return serverErr
	}
	return nil
}

// Watch calls fn now and then every interval until ctx is done.
func Watch(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		interval = DefaultRefresh
	}
	fn(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn(ctx)
		}
	}
}

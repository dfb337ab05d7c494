package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Backend is a physical order store. Exactly one backend is authoritative
// for a deployment.
type Backend interface {
	List(ctx context.Context) ([]Order, error)
	// Insert reports false when an order with the same id already exists.
	Insert(ctx context.Context, o Order) (bool, error)
	// UpdateStatus returns (nil, nil) when the id is unknown.
	UpdateStatus(ctx context.Context, id, status string) (*Order, error)
	Delete(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
}

// Getter is implemented by backends that can read one order by id.
type Getter interface {
	// Get returns (nil, nil) when the id is unknown.
	Get(ctx context.Context, id string) (*Order, error)
}

// Repository is the in-process view of orders: a read-through,
// write-through cache over a Backend, or a plain pass-through when the
// backend is shared with other processes.
type Repository struct {
	mu      sync.Mutex
	backend Backend
	log     *zap.Logger

	cached bool
	cache  []Order
	loaded bool

	nowFunc func() time.Time
	newID   func(time.Time) string
}

// Option configures a Repository.
type Option func(*Repository)

// WithoutCache sends every read to the backend. Backends written by other
// processes, such as a DynamoDB table behind several Lambda instances, need
// it.
func WithoutCache() Option {
	return func(r *Repository) { r.cached = false }
}

// NewRepository wraps backend with a cache unless WithoutCache is given.
func NewRepository(backend Backend, log *zap.Logger, opts ...Option) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Repository{
		backend: backend,
		log:     log,
		cached:  true,
		nowFunc: time.Now,
		newID:   NewID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cached reports whether reads are served from memory.
func (r *Repository) Cached() bool { return r.cached }

// snapshot returns the current orders; callers must not modify the result.
func (r *Repository) snapshot(ctx context.Context) ([]Order, error) {
	if !r.cached {
		list, err := r.backend.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("load orders: %w", err)
		}
		return list, nil
	}
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	return r.cache, nil
}

func (r *Repository) load(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	list, err := r.backend.List(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	r.cache = list
	r.loaded = true
	r.log.Debug("orders loaded into cache", zap.Int("count", len(list)))
	return nil
}

func (r *Repository) indexOf(id string) int {
	for i := range r.cache {
		if r.cache[i].ID == id {
			return i
		}
	}
	return -1
}

// FillDefaults sets id, timestamp, date, source and status when missing.
func (r *Repository) FillDefaults(o *Order) {
	now := r.nowFunc()
	if o.ID == "" {
		o.ID = r.newID(now)
	}
	if o.Timestamp == 0 {
		o.Timestamp = now.UnixMilli()
	}
	if o.Date == "" {
		o.Date = FormatDate(now)
	}
	if o.Source == "" {
		o.Source = SourceAPI
	}
	if o.Status == "" {
		o.Status = StatusPreordered
	}
	if o.Items == nil {
		o.Items = Items{}
	}
}

// SaveOrder fills defaults and appends the order. An order whose id already
// exists is left untouched and created is false.
func (r *Repository) SaveOrder(ctx context.Context, o Order) (saved Order, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.FillDefaults(&o)
	if r.cached {
		if err := r.load(ctx); err != nil {
			return o, false, err
		}
		if r.indexOf(o.ID) >= 0 {
			r.log.Info("order already exists", zap.String("order_id", o.ID))
			return o, false, nil
		}
	}

	created, err = r.backend.Insert(ctx, o)
	if err != nil {
		return o, false, fmt.Errorf("insert order %s: %w", o.ID, err)
	}
	if !created {
		// another writer got there first; drop the stale cache
		r.loaded = false
		r.log.Info("order already exists in backend", zap.String("order_id", o.ID))
		return o, false, nil
	}
	if r.cached {
		r.cache = append(r.cache, o)
	}
	r.log.Info("order saved", zap.String("order_id", o.ID))
	return o, true, nil
}

// GetAllOrders returns a copy of every order in insertion order.
func (r *Repository) GetAllOrders(ctx context.Context) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Order, len(list))
	copy(out, list)
	return out, nil
}

// GetOrderByID returns (nil, nil) when the id is unknown. Without a cache
// the backend's Get is used when it has one.
func (r *Repository) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.backend.(Getter); ok && !r.cached {
		o, err := g.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get order %s: %w", id, err)
		}
		return o, nil
	}
	list, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			o := list[i]
			return &o, nil
		}
	}
	return nil, nil
}

// DeleteOrder reports whether an order was removed.
func (r *Repository) DeleteOrder(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ok, err := r.backend.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete order %s: %w", id, err)
	}
	if !r.cached {
		return ok, nil
	}
	if err := r.load(ctx); err != nil {
		return ok, err
	}
	if i := r.indexOf(id); i >= 0 {
		r.cache = append(r.cache[:i], r.cache[i+1:]...)
	}
	return ok, nil
}

// UpdateOrderStatus overwrites the status and returns the updated order,
// or (nil, nil) when the id is unknown.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id, status string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated, err := r.backend.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	if !r.cached {
		return updated, nil
	}
	if err := r.load(ctx); err != nil {
		return updated, err
	}
	i := r.indexOf(id)
	switch {
	case updated == nil && i >= 0:
		// gone from the backend behind our back
		r.cache = append(r.cache[:i], r.cache[i+1:]...)
	case updated != nil && i >= 0:
		r.cache[i] = *updated
	case updated != nil:
		r.cache = append(r.cache, *updated)
	}
	return updated, nil
}

// GetStats counts orders by status.
func (r *Repository) GetStats(ctx context.Context) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(list), nil
}

// ResetDatabase removes every order.
func (r *Repository) ResetDatabase(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.backend.Clear(ctx); err != nil {
		return fmt.Errorf("reset database: %w", err)
	}
	r.cache = []Order{}
	r.loaded = true
	r.log.Warn("order database reset")
	return nil
}

package handlers

import (
	"context"
	"sync"

	"github.com/ridersklan/preorderflow/internal/idempotency"
	"github.com/ridersklan/preorderflow/internal/orders"
	"github.com/ridersklan/preorderflow/internal/sheets"
)

type replicatorCall struct {
	op     string
	id     string
	status string
}

type fakeReplicator struct {
	mu    sync.Mutex
	calls []replicatorCall
	err   error
}

func (f *fakeReplicator) record(call replicatorCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeReplicator) OrderCreated(ctx context.Context, o orders.Order) error {
	return f.record(replicatorCall{op: "create", id: o.ID, status: o.Status})
}

func (f *fakeReplicator) StatusChanged(ctx context.Context, id, status string) error {
	return f.record(replicatorCall{op: "status", id: id, status: status})
}

func (f *fakeReplicator) OrderDeleted(ctx context.Context, id string) error {
	return f.record(replicatorCall{op: "delete", id: id})
}

type fakeMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (f *fakeMetrics) Count(ctx context.Context, name string, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[name] += n
	return nil
}

type fakeSheets struct {
	configured bool
	rows       []orders.Order
	err        error
}

func (f *fakeSheets) Configured() bool { return f.configured }

func (f *fakeSheets) GetOrders(ctx context.Context) ([]orders.Order, error) {
	return f.rows, f.err
}

func (f *fakeSheets) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, o := range f.rows {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, sheets.ErrNotFound
}

// memIdempotency mirrors idempotency.Store without DynamoDB.
type memIdempotency struct {
	mu      sync.Mutex
	records map[string]*idempotency.Record
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{records: map[string]*idempotency.Record{}}
}

func (m *memIdempotency) CreateIfNotExists(ctx context.Context, key, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; ok {
		return false, nil
	}
	m.records[key] = &idempotency.Record{Key: key, Fingerprint: fingerprint, Status: idempotency.StatusInProgress}
	return true, nil
}

func (m *memIdempotency) Get(ctx context.Context, key string) (*idempotency.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memIdempotency) MarkDone(ctx context.Context, key, orderID, responseBody string, responseStatus int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[key]
	rec.Status = idempotency.StatusDone
	rec.OrderID = orderID
	rec.ResponseBody = responseBody
	rec.ResponseStatus = responseStatus
	return nil
}

func (m *memIdempotency) MarkFailed(ctx context.Context, key, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[key]
	rec.Status = idempotency.StatusFailed
	rec.Note = note
	return nil
}

func (m *memIdempotency) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[key]; ok && rec.Status == idempotency.StatusFailed {
		delete(m.records, key)
	}
	return nil
}

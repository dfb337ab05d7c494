package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridersklan/preorderflow/internal/orders"
)

func sampleOrder(id string) orders.Order {
	return orders.Order{
		ID:        id,
		Customer:  "Jan Novak",
		Email:     "jan@example.com",
		Phone:     "+420 777 888 999",
		Items:     orders.Items{{Name: "Jersey", Gender: "Men", Size: "L"}},
		Status:    orders.StatusPreordered,
		Timestamp: 1714557600000,
		Date:      "2024-05-01T10:00:00.000Z",
		Source:    orders.SourceAPI,
	}
}

func TestNew_PicksFirstWritableDir(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))
	good := filepath.Join(t.TempDir(), "nested", "data")

	s := New([]string{"", filepath.Join(blocked, "sub"), good}, nil)

	assert.Equal(t, good, s.Dir())
	assert.Equal(t, filepath.Join(good, FileName), s.Path())
	_, err := os.Stat(filepath.Join(good, sentinelName))
	assert.True(t, os.IsNotExist(err), "sentinel must be removed")
}

func TestLoad_MissingFileCreatesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	s := New([]string{dir}, nil)

	got := s.Load()
	assert.Empty(t, got)

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestRoundTripThroughFreshStore(t *testing.T) {
	dir := t.TempDir()
	want := []orders.Order{sampleOrder("ORD-1"), sampleOrder("ORD-2")}

	require.True(t, New([]string{dir}, nil).Save(want))

	got := New([]string{dir}, nil).Load()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reloaded orders mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_CorruptFileFallsBackToMemory(t *testing.T) {
	dir := t.TempDir()
	s := New([]string{dir}, nil)
	require.True(t, s.Save([]orders.Order{sampleOrder("ORD-1")}))

	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	got := s.Load()
	require.Len(t, got, 1)
	assert.Equal(t, "ORD-1", got[0].ID)
}

func TestMemoryOnlyStore(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	s := New([]string{filepath.Join(blocked, "sub")}, nil)
	assert.Empty(t, s.Dir())
	assert.True(t, s.Info().MemoryOnly)

	assert.False(t, s.Save([]orders.Order{sampleOrder("ORD-1")}), "no disk write possible")
	got := s.Load()
	require.Len(t, got, 1)
	assert.Equal(t, "ORD-1", got[0].ID)
}

func TestConvenienceOperations(t *testing.T) {
	s := New([]string{t.TempDir()}, nil)

	assert.True(t, s.AddOrder(sampleOrder("A")))
	assert.True(t, s.AddOrder(sampleOrder("B")))
	assert.False(t, s.AddOrder(sampleOrder("A")), "duplicate id")

	found := s.FindOrder("B")
	require.NotNil(t, found)
	assert.Equal(t, "B", found.ID)
	assert.Nil(t, s.FindOrder("missing"))

	assert.True(t, s.UpdateOrderStatus("A", orders.StatusPaid))
	assert.False(t, s.UpdateOrderStatus("missing", orders.StatusPaid))
	assert.Equal(t, orders.StatusPaid, s.FindOrder("A").Status)

	assert.True(t, s.DeleteOrder("A"))
	assert.False(t, s.DeleteOrder("A"))
	assert.Len(t, s.Load(), 1)

	assert.True(t, s.ClearOrders())
	assert.Empty(t, s.Load())
}

func TestBackendInterface(t *testing.T) {
	ctx := context.Background()
	s := New([]string{t.TempDir()}, nil)

	created, err := s.Insert(ctx, sampleOrder("X"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Insert(ctx, sampleOrder("X"))
	require.NoError(t, err)
	assert.False(t, created)

	updated, err := s.UpdateStatus(ctx, "X", orders.StatusAdded)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, orders.StatusAdded, updated.Status)

	missing, err := s.UpdateStatus(ctx, "nope", orders.StatusAdded)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := s.Delete(ctx, "X")
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConvenienceAndBackendShareSemantics(t *testing.T) {
	ctx := context.Background()
	blocked := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))
	s := New([]string{filepath.Join(blocked, "sub")}, nil)

	// memory-only: the order is kept, but it never reaches a file
	assert.False(t, s.AddOrder(sampleOrder("A")))
	created, err := s.Insert(ctx, sampleOrder("A"))
	require.NoError(t, err)
	assert.False(t, created, "AddOrder already stored A")

	got, err := s.Get(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.FindOrder("A"), got)

	assert.False(t, s.UpdateOrderStatus("A", orders.StatusPaid))
	assert.Equal(t, orders.StatusPaid, s.FindOrder("A").Status)

	assert.False(t, s.DeleteOrder("A"))
	ok, err := s.Delete(ctx, "A")
	require.NoError(t, err)
	assert.False(t, ok, "DeleteOrder already removed A")
}

func TestConcurrentInsertsAreNotLost(t *testing.T) {
	ctx := context.Background()
	s := New([]string{t.TempDir()}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Insert(ctx, sampleOrder(string(rune('a'+i))))
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Load(), 20)
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	s := New([]string{dir, missing}, nil)
	require.True(t, s.Save([]orders.Order{sampleOrder("A"), sampleOrder("B")}))

	rep := s.Probe()
	require.Contains(t, rep, dir)
	require.Contains(t, rep, missing)

	d := rep[dir]
	assert.True(t, d.Exists)
	assert.True(t, d.Writable)
	assert.Contains(t, d.Files, FileName)
	require.NotNil(t, d.OrdersFile)
	assert.True(t, d.OrdersFile.ValidJSON)
	assert.Equal(t, 2, d.OrdersFile.OrdersCount)

	m := rep[missing]
	assert.False(t, m.Exists)
	assert.False(t, m.Writable)
	_, err := os.Stat(missing)
	assert.True(t, os.IsNotExist(err), "probe must not create directories")
}

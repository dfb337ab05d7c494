package demo

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridersklan/preorderflow/internal/orders"
)

var now = time.UnixMilli(1714557600000)

func TestServerOrder_Deterministic(t *testing.T) {
	a := ServerOrder("SERVER-1234", now)
	b := ServerOrder("SERVER-1234", now)
	assert.Equal(t, a, b)

	// seed 1234
	assert.Equal(t, "SERVER-1234", a.ID)
	assert.Equal(t, "Customer 34", a.Customer)
	assert.Equal(t, "customer34@example.com", a.Email)
	assert.Equal(t, "+420 434 434 434", a.Phone)
	assert.Equal(t, orders.StatusAdded, a.Status)
	assert.Equal(t, now.UnixMilli()-1234*60000, a.Timestamp)
	assert.Equal(t, orders.SourceServer, a.Source)
	assert.Equal(t, orders.Items{
		{Name: "Jersey Pro", Gender: "Women", Size: "L"},
		{Name: "Bibs Pro", Gender: "Unisex", Size: "XL"},
	}, a.Items)
}

func TestServerOrder_CapEveryFifthSeed(t *testing.T) {
	o := ServerOrder("SERVER-20005-x", now)
	require.Len(t, o.Items, 3)
	assert.Equal(t, orders.Item{Name: "Cycling Cap", Gender: "Unisex", Size: "One Size"}, o.Items[2])
	assert.Equal(t, orders.StatusPaid, o.Status)
}

func TestServerOrder_NoDigitsUsesNow(t *testing.T) {
	o := ServerOrder("SERVER-abc", now)
	// 1714557600000 % 10000 == 0
	assert.Equal(t, "Customer 0", o.Customer)
	assert.Len(t, o.Items, 3)
}

func TestServerOrder_ZeroUsesNow(t *testing.T) {
	later := now.Add(1234 * time.Millisecond)
	zero := ServerOrder("SERVER-0", later)
	same := ServerOrder("SERVER-1234", later)

	assert.Equal(t, "Customer 34", zero.Customer)
	same.ID = zero.ID
	assert.Equal(t, same, zero)
}

func TestIsServerID(t *testing.T) {
	assert.True(t, IsServerID("SERVER-1"))
	assert.False(t, IsServerID("ORD-1"))
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, 5, ClampCount(0))
	assert.Equal(t, 5, ClampCount(-3))
	assert.Equal(t, 1, ClampCount(1))
	assert.Equal(t, 20, ClampCount(50))
}

func TestTestOrders(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	list := TestOrders(7, now, rng)
	require.Len(t, list, 7)

	seen := map[string]bool{}
	for i, o := range list {
		assert.False(t, seen[o.ID])
		seen[o.ID] = true
		assert.Regexp(t, `^TEST-1714557600000-\d+$`, o.ID)
		assert.Equal(t, orders.SourceTest, o.Source)
		assert.True(t, orders.ValidStatus(o.Status))
		assert.NotEmpty(t, o.Items)
		assert.LessOrEqual(t, len(o.Items), 3)
		assert.LessOrEqual(t, o.Timestamp, now.UnixMilli())
		assert.Greater(t, o.Timestamp, now.Add(-31*24*time.Hour).UnixMilli())
		assert.Equal(t, i+1, len(seen))
	}
	assert.Len(t, TestOrders(100, now, nil), MaxTestCount)
}

// Package demo produces synthetic orders: deterministic stand-ins for
// SERVER- ids the store does not know, and random batches for testing.
package demo

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/ridersklan/preorderflow/internal/orders"
)

// ServerPrefix marks ids that get-order may synthesize.
const ServerPrefix = "SERVER-"

var (
	statuses = []string{orders.StatusPreordered, orders.StatusAdded, orders.StatusPaid}
	genders  = []string{"Men", "Women", "Unisex"}
	sizes    = []string{"S", "M", "L", "XL"}
	jerseys  = []string{"Jersey Classic", "Jersey Pro", "Jersey Elite"}
	bibs     = []string{"Bibs Basic", "Bibs Pro", "Bibs Elite"}
)

// IsServerID reports whether id is eligible for ServerOrder.
func IsServerID(id string) bool {
	return strings.HasPrefix(id, ServerPrefix)
}

// ServerOrder derives an order from the digits following the SERVER- prefix;
// no digits, or zero, seed from now instead.
// The same id always yields the same customer and items; only the timestamp
// moves with now.
func ServerOrder(id string, now time.Time) orders.Order {
	n := leadingNumber(strings.TrimPrefix(id, ServerPrefix))
	if n <= 0 {
		n = now.UnixMilli()
	}
	seed := int(n % 10000)

	x := seed%900 + 100
	ts := now.UnixMilli() - int64(seed)*60000
	items := orders.Items{
		{Name: jerseys[seed%3], Gender: genders[seed%3], Size: sizes[seed%4]},
		{Name: bibs[seed%3], Gender: genders[(seed+1)%3], Size: sizes[(seed+1)%4]},
	}
	if seed%5 == 0 {
		items = append(items, orders.Item{Name: "Cycling Cap", Gender: "Unisex", Size: "One Size"})
	}

	return orders.Order{
		ID:        id,
		Customer:  fmt.Sprintf("Customer %d", seed%100),
		Email:     fmt.Sprintf("customer%d@example.com", seed%100),
		Phone:     fmt.Sprintf("+420 %d %d %d", x, x, x),
		Items:     items,
		Status:    statuses[seed%3],
		Timestamp: ts,
		Date:      orders.FormatDate(time.UnixMilli(ts)),
		Source:    orders.SourceServer,
	}
}

// leadingNumber parses the digits at the start of s, or -1 if there are none.
func leadingNumber(s string) int64 {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return -1
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// too many digits for int64; keep the tail, which decides the seed anyway
		n, _ = strconv.ParseInt(s[end-9:end], 10, 64)
	}
	return n
}

type product struct {
	name   string
	gender string
	sizes  []string
}

var catalog = []product{
	{name: "Jersey Classic", gender: "Men", sizes: []string{"S", "M", "L", "XL"}},
	{name: "Jersey Pro", gender: "Women", sizes: []string{"S", "M", "L"}},
	{name: "Bibs Basic", gender: "Men", sizes: []string{"S", "M", "L", "XL"}},
	{name: "Bibs Elite", gender: "Women", sizes: []string{"S", "M", "L"}},
	{name: "Cycling Cap", gender: "Unisex", sizes: []string{"One Size"}},
}

// Test-order batch bounds.
const (
	DefaultTestCount = 5
	MaxTestCount     = 20
)

// ClampCount maps a requested batch size onto 1..MaxTestCount, with
// DefaultTestCount for zero or negative requests.
func ClampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultTestCount
	case n > MaxTestCount:
		return MaxTestCount
	}
	return n
}

// TestOrders builds count random orders with TEST- ids. rng may be nil.
func TestOrders(count int, now time.Time, rng *rand.Rand) []orders.Order {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))
	}
	count = ClampCount(count)
	const month = int64(30 * 24 * time.Hour / time.Millisecond)

	out := make([]orders.Order, 0, count)
	for i := 1; i <= count; i++ {
		n := 1 + rng.IntN(3)
		items := make(orders.Items, 0, n)
		for j := 0; j < n; j++ {
			p := catalog[rng.IntN(len(catalog))]
			items = append(items, orders.Item{Name: p.name, Gender: p.gender, Size: p.sizes[rng.IntN(len(p.sizes))]})
		}
		ts := now.UnixMilli() - rng.Int64N(month)
		out = append(out, orders.Order{
			ID:        fmt.Sprintf("TEST-%d-%d", now.UnixMilli(), i),
			Customer:  fmt.Sprintf("Test Customer %d", i),
			Email:     fmt.Sprintf("test%d@example.com", i),
			Phone:     fmt.Sprintf("+420 %03d %03d %03d", rng.IntN(1000), rng.IntN(1000), rng.IntN(1000)),
			Items:     items,
			Status:    statuses[rng.IntN(len(statuses))],
			Timestamp: ts,
			Date:      orders.FormatDate(time.UnixMilli(ts)),
			Source:    orders.SourceTest,
		})
	}
	return out
}

package dashboard

import (
	"sort"

	"github.com/ridersklan/preorderflow/internal/orders"
)

// Merge combines server and local orders by id. Server copies win; local
// orders only fill ids the server does not have. Ids in deleted are dropped.
// The result is newest first.
func Merge(server, local []orders.Order, deleted []string) []orders.Order {
	gone := make(map[string]struct{}, len(deleted))
	for _, id := range deleted {
		gone[id] = struct{}{}
	}

	byID := make(map[string]orders.Order, len(server)+len(local))
	add := func(o orders.Order, source string) {
		if _, skip := gone[o.ID]; skip {
			return
		}
		if _, seen := byID[o.ID]; seen {
			return
		}
		if o.Source == "" {
			o.Source = source
		}
		byID[o.ID] = o
	}
	for _, o := range server {
		add(o, orders.SourceServer)
	}
	for _, o := range local {
		add(o, orders.SourceLocal)
	}

	out := make([]orders.Order, 0, len(byID))
	for _, o := range byID {
		out = append(out, o)
	}
	// id breaks ties so the output does not depend on map order
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out
}

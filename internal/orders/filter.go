package orders

import (
	"sort"
	"strings"
)

// Matches reports whether search occurs, case-insensitively, in the id,
// customer, email, phone or any item name of o. An empty search matches.
func Matches(o Order, search string) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	for _, f := range []string{o.ID, o.Customer, o.Email, o.Phone} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	for _, it := range o.Items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			return true
		}
	}
	return false
}

// Filter keeps the orders with the given status (empty or "all" keeps every
// status) that match search.
func Filter(list []Order, status, search string) []Order {
	out := make([]Order, 0, len(list))
	for _, o := range list {
		if status != "" && status != "all" && o.Status != status {
			continue
		}
		if !Matches(o, search) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// SortNewestFirst orders by timestamp, newest first, keeping ties stable.
func SortNewestFirst(list []Order) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp > list[j].Timestamp
	})
}

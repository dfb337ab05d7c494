package dashboard

import (
	"sort"

	"github.com/ridersklan/preorderflow/internal/orders"
)

// ProductCount is how many of one product variant were ordered.
type ProductCount struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Size   string `json:"size"`
	Count  int    `json:"count"`
}

// ProductSummary counts items by name, gender and size, sorted in that order.
func ProductSummary(list []orders.Order) []ProductCount {
	type variant struct{ name, gender, size string }
	counts := map[variant]int{}
	for _, o := range list {
		for _, it := range o.Items {
			if it.Error != "" {
				continue
			}
			counts[variant{it.Name, it.Gender, it.Size}]++
		}
	}

	out := make([]ProductCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ProductCount{Name: v.name, Gender: v.gender, Size: v.size, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Gender != b.Gender {
			return a.Gender < b.Gender
		}
		return a.Size < b.Size
	})
	return out
}

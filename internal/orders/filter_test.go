package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	list := []Order{
		{ID: "ORD-1", Customer: "Jan Novak", Email: "jan@example.com", Status: StatusPaid,
			Items: Items{{Name: "Jersey Pro"}}},
		{ID: "ORD-2", Customer: "Eva Dvorak", Email: "eva@example.com", Phone: "+420 777", Status: StatusAdded,
			Items: Items{{Name: "Bibs Basic"}}},
		{ID: "ORD-3", Customer: "Petr", Email: "petr@example.com", Status: StatusPaid},
	}

	ids := func(l []Order) []string {
		out := []string{}
		for _, o := range l {
			out = append(out, o.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		status string
		search string
		want   []string
	}{
		{name: "everything", want: []string{"ORD-1", "ORD-2", "ORD-3"}},
		{name: "all keyword", status: "all", want: []string{"ORD-1", "ORD-2", "ORD-3"}},
		{name: "by status", status: StatusPaid, want: []string{"ORD-1", "ORD-3"}},
		{name: "by customer, any case", search: "NOVAK", want: []string{"ORD-1"}},
		{name: "by item name", search: "bibs", want: []string{"ORD-2"}},
		{name: "by phone", search: "777", want: []string{"ORD-2"}},
		{name: "status and search", status: StatusAdded, search: "jan", want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Filter(list, tc.status, tc.search)))
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	list := []Order{{ID: "a", Timestamp: 1}, {ID: "b", Timestamp: 3}, {ID: "c", Timestamp: 2}, {ID: "d", Timestamp: 3}}
	SortNewestFirst(list)
	assert.Equal(t, []string{"b", "d", "c", "a"}, []string{list[0].ID, list[1].ID, list[2].ID, list[3].ID})
}

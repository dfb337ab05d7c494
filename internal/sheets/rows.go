package sheets

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/ridersklan/preorderflow/internal/orders"
)

// Column headers of the order sheet.
const (
	ColID        = "ID"
	ColName      = "Name"
	ColEmail     = "Email"
	ColPhone     = "Phone"
	ColItems     = "Items"
	ColTimestamp = "Timestamp"
)

// Row is one sheet row keyed by column header. Cell values keep their raw
// JSON form because the sheet returns numbers, strings and dates alike.
type Row map[string]json.RawMessage

var statusPattern = regexp.MustCompile("(?i)[\"`']?status[\"`']?\\s*[:=]\\s*[\"`']?([^\"'`,}\\]]+)")

func (r Row) text(col string) string {
	raw := bytes.TrimSpace(r[col])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

// ToOrder maps a sheet row to an order. now stamps rows without an id or
// timestamp.
func (r Row) ToOrder(now time.Time) orders.Order {
	o := orders.Order{
		ID:       r.text(ColID),
		Customer: r.text(ColName),
		Email:    r.text(ColEmail),
		Phone:    r.text(ColPhone),
		Items:    r.items(),
		Status:   ExtractStatus(r[ColItems]),
		Source:   orders.SourceGoogleSheets,
	}
	if o.ID == "" {
		o.ID = orders.NewID(now)
	}
	if o.Customer == "" {
		o.Customer = "Unknown"
	}
	if ts, ok := orders.ParseTimestampJSON(r[ColTimestamp]); ok {
		o.Timestamp = ts
	} else {
		o.Timestamp = now.UnixMilli()
	}
	o.Date = orders.FormatDate(time.UnixMilli(o.Timestamp))
	if o.Status == "" {
		o.Status = orders.StatusPreordered
	}
	return o
}

func (r Row) items() orders.Items {
	raw := bytes.TrimSpace(r[ColItems])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`)) {
		return orders.Items{}
	}
	var it orders.Items
	_ = json.Unmarshal(raw, &it)
	return it
}

// ExtractStatus finds the status hidden in the Items cell: a status or
// metadata.status key of an object, the status of the first item of an
// array, or a status: "..." fragment when the cell is not valid JSON.
func ExtractStatus(cell json.RawMessage) string {
	cell = bytes.TrimSpace(cell)
	if len(cell) == 0 {
		return ""
	}
	payload := []byte(cell)
	if cell[0] == '"' {
		var s string
		if err := json.Unmarshal(cell, &s); err != nil {
			return ""
		}
		payload = []byte(strings.TrimSpace(s))
		if len(payload) == 0 {
			return ""
		}
	}

	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		if m := statusPattern.FindSubmatch(payload); m != nil {
			return strings.ToLower(strings.TrimSpace(string(m[1])))
		}
		return ""
	}
	switch t := v.(type) {
	case map[string]interface{}:
		return statusOf(t)
	case []interface{}:
		if len(t) > 0 {
			if first, ok := t[0].(map[string]interface{}); ok {
				return statusOf(first)
			}
		}
	}
	return ""
}

func statusOf(m map[string]interface{}) string {
	if s, ok := m["status"].(string); ok && s != "" {
		return s
	}
	if meta, ok := m["metadata"].(map[string]interface{}); ok {
		if s, ok := meta["status"].(string); ok {
			return s
		}
	}
	return ""
}

// record is the flat shape the sheet script appends as a new row.
type record struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Items     string `json:"items"`
	Timestamp string `json:"timestamp"`
}

func toRecord(o orders.Order) (record, error) {
	items := o.Items
	if items == nil {
		items = orders.Items{}
	}
	// the status travels inside the items blob
	withStatus := make(orders.Items, len(items))
	for i, it := range items {
		if it.Status == "" {
			it.Status = o.Status
		}
		withStatus[i] = it
	}
	blob, err := json.Marshal(withStatus)
	if err != nil {
		return record{}, err
	}
	ts := o.Date
	if ts == "" && o.Timestamp != 0 {
		ts = orders.FormatDate(time.UnixMilli(o.Timestamp))
	}
	return record{
		ID:        o.ID,
		Name:      o.Customer,
		Email:     o.Email,
		Phone:     o.Phone,
		Items:     string(blob),
		Timestamp: ts,
	}, nil
}

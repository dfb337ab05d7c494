package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// DateLayout matches the ISO strings written next to timestamps.
const DateLayout = "2006-01-02T15:04:05.000Z"

var timestampLayouts = []string{
	time.RFC3339Nano,
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
}

// NewID returns an id of the form ORD-<millis>-<1000..9999>.
func NewID(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%d", now.UnixMilli(), 1000+rand.IntN(9000))
}

// FormatDate renders t as a UTC ISO string with millisecond precision.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// OpaqueItems is what an unparsable items payload degrades to.
func OpaqueItems() Items {
	return Items{{Name: "Unknown item", Error: "Invalid JSON"}}
}

// ParseItems decodes items embedded as a JSON string, as the spreadsheet stores them.
func ParseItems(s string) Items {
	s = strings.TrimSpace(s)
	if s == "" {
		return Items{}
	}
	var it Items
	if err := json.Unmarshal([]byte(s), &it); err != nil {
		return OpaqueItems()
	}
	return it
}

// UnmarshalJSON accepts an array, a single object or a JSON-encoded string.
// Anything it cannot make sense of becomes a single opaque item.
func (it *Items) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*it = nil
		return nil
	}
	switch data[0] {
	case '[':
		var list []Item
		if err := json.Unmarshal(data, &list); err != nil {
			*it = OpaqueItems()
			return nil
		}
		*it = list
	case '{':
		var single Item
		if err := json.Unmarshal(data, &single); err != nil {
			*it = OpaqueItems()
			return nil
		}
		*it = Items{single}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*it = OpaqueItems()
			return nil
		}
		*it = ParseItems(s)
	default:
		*it = OpaqueItems()
	}
	return nil
}

// FlexString decodes a JSON string or number into its string form. Older
// clients sent numeric order ids.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

// UnmarshalJSON decodes orders written by any client generation: the id may
// be numeric, the customer may arrive as "name" and the timestamp may be a
// date string.
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        FlexString      `json:"id"`
		Customer  string          `json:"customer"`
		Name      string          `json:"name"`
		Email     string          `json:"email"`
		Phone     FlexString      `json:"phone"`
		Items     Items           `json:"items"`
		Status    string          `json:"status"`
		Timestamp json.RawMessage `json:"timestamp"`
		Date      string          `json:"date"`
		Source    string          `json:"source"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Order{
		ID:       string(raw.ID),
		Customer: raw.Customer,
		Email:    raw.Email,
		Phone:    string(raw.Phone),
		Items:    raw.Items,
		Status:   raw.Status,
		Date:     raw.Date,
		Source:   raw.Source,
	}
	if o.Customer == "" {
		o.Customer = raw.Name
	}
	if ts, ok := ParseTimestampJSON(raw.Timestamp); ok {
		o.Timestamp = ts
	}
	return nil
}

// ParseTimestampJSON reads epoch millis from a JSON number or date string.
func ParseTimestampJSON(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return ParseTimestamp(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return int64(f), true
}

// ParseTimestamp reads epoch millis from a numeric string or a date string.
func ParseTimestamp(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(n), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

package orders

// Order statuses
const (
	StatusPreordered = "preordered"
	StatusAdded      = "added"
	StatusPaid       = "paid"
)

// Order sources, shown as provenance badges by the dashboard.
const (
	SourceAPI          = "api"
	SourceServer       = "server"
	SourceLocal        = "local"
	SourceGoogleSheets = "googlesheets"
	SourceDemo         = "demo"
	SourceTest         = "test"
)

// Statuses lists the values accepted by update-order.
var Statuses = []string{StatusPreordered, StatusAdded, StatusPaid}

// Item is a single line of a preorder.
type Item struct {
	Name   string `json:"name" dynamodbav:"name"`
	Gender string `json:"gender" dynamodbav:"gender"`
	Size   string `json:"size" dynamodbav:"size"`
	// Status is only carried by the spreadsheet encoding, which has no status column.
	Status string `json:"status,omitempty" dynamodbav:"status,omitempty"`
	Error  string `json:"error,omitempty" dynamodbav:"error,omitempty"`
}

// Items decodes from a JSON array, a single object or a JSON-encoded string.
type Items []Item

// Order is a customer's preorder as persisted by every backend.
type Order struct {
	ID        string `json:"id" dynamodbav:"id"` // PK
	Customer  string `json:"customer" dynamodbav:"customer"`
	Email     string `json:"email" dynamodbav:"email"`
	Phone     string `json:"phone" dynamodbav:"phone,omitempty"`
	Items     Items  `json:"items" dynamodbav:"items"`
	Status    string `json:"status" dynamodbav:"status"` // preordered | added | paid
	Timestamp int64  `json:"timestamp" dynamodbav:"timestamp"` // epoch millis
	Date      string `json:"date,omitempty" dynamodbav:"date,omitempty"`
	Source    string `json:"source,omitempty" dynamodbav:"source,omitempty"`
}

// Stats is the status histogram returned next to order listings.
type Stats struct {
	TotalOrders int            `json:"totalOrders"`
	Statuses    map[string]int `json:"statuses"`
}

// ComputeStats counts orders by status; an empty status counts as "unknown".
func ComputeStats(list []Order) Stats {
	st := Stats{TotalOrders: len(list), Statuses: map[string]int{}}
	for _, o := range list {
		s := o.Status
		if s == "" {
			s = "unknown"
		}
		st.Statuses[s]++
	}
	return st
}

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

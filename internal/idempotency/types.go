package idempotency

import "time"

// Record states
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// Record is one Idempotency-Key as stored in DynamoDB.
type Record struct {
	Key            string    `dynamodbav:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status"`
	Fingerprint    string    `dynamodbav:"fingerprint"` // sha256 of the request body
	OrderID        string    `dynamodbav:"order_id,omitempty"`
	ResponseBody   string    `dynamodbav:"response_body,omitempty"`
	ResponseStatus int       `dynamodbav:"response_status,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL, epoch seconds
	Note           string    `dynamodbav:"note,omitempty"`
}

// Expired reports whether DynamoDB TTL should already have removed r.
// TTL deletion lags, so readers check it themselves. It matches the
// expires_at < :now takeover condition of CreateIfNotExists.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt > 0 && r.ExpiresAt < now.Unix()
}

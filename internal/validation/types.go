package validation

import (
	"encoding/json"

	"github.com/ridersklan/preorderflow/internal/orders"
)

// SubmitOrderRequest is the payload for submit-order. It decodes through
// orders.Order, so "name" is accepted for customer and items may arrive as
// an embedded JSON string.
type SubmitOrderRequest struct {
	ID       string       `json:"id"`
	Customer string       `json:"customer" validate:"required"`
	Email    string       `json:"email" validate:"required"`
	Phone    string       `json:"phone"`
	Items    orders.Items `json:"items" validate:"required,min=1"`
}

func (r *SubmitOrderRequest) UnmarshalJSON(data []byte) error {
	var o orders.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}
	*r = SubmitOrderRequest{
		ID:       o.ID,
		Customer: o.Customer,
		Email:    o.Email,
		Phone:    o.Phone,
		Items:    o.Items,
	}
	return nil
}

// Order converts the request into an order ready for the repository.
func (r SubmitOrderRequest) Order() orders.Order {
	return orders.Order{
		ID:       r.ID,
		Customer: r.Customer,
		Email:    r.Email,
		Phone:    r.Phone,
		Items:    r.Items,
		Status:   orders.StatusPreordered,
	}
}

// UpdateOrderRequest is the payload for update-order.
type UpdateOrderRequest struct {
	OrderID orders.FlexString `json:"orderId" validate:"required"`
	Status  string            `json:"status" validate:"required,oneof=preordered added paid"`
}

// DeleteOrderRequest is the body form of delete-order.
type DeleteOrderRequest struct {
	OrderID orders.FlexString `json:"orderId"`
}

// SyncOrdersRequest is the payload for sync-local-orders. Orders are kept raw
// so that each one can fail on its own.
type SyncOrdersRequest struct {
	Orders []json.RawMessage `json:"orders" validate:"required"`
}

// SyncOrder is the shape every synced order must have. Items stay raw: only
// a JSON array is accepted here, unlike submit-order.
type SyncOrder struct {
	ID       string          `json:"id" validate:"required"`
	Customer string          `json:"customer" validate:"required"`
	Email    string          `json:"email" validate:"required"`
	Items    json.RawMessage `json:"items" validate:"required,jsonarray"`
}

// NewSyncOrder picks the checked fields out of a decoded order and its raw
// JSON.
func NewSyncOrder(o orders.Order, raw json.RawMessage) SyncOrder {
	var shape struct {
		Items json.RawMessage `json:"items"`
	}
	_ = json.Unmarshal(raw, &shape)
	return SyncOrder{ID: o.ID, Customer: o.Customer, Email: o.Email, Items: shape.Items}
}

// ResetRequest must carry confirm=true.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// GenerateOrdersRequest asks for a batch of test orders.
type GenerateOrdersRequest struct {
	Count int `json:"count"`
}

// AdminTokenRequest exchanges the admin password for a token.
type AdminTokenRequest struct {
	Password string `json:"password" validate:"required"`
}

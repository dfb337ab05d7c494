// Package dashboard is the data layer of the admin dashboard: it fetches
// orders from whichever endpoint answers, merges them with orders cached on
// this machine and summarizes them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ridersklan/preorderflow/internal/auth"
	"github.com/ridersklan/preorderflow/internal/orders"
)

// DefaultPaths are tried in order for every call.
var DefaultPaths = []string{"/.netlify/functions", "/api"}

// Client calls the order API, falling back across candidate paths.
type Client struct {
	http  *resty.Client
	base  string
	paths []string
	token string
}

// NewClient builds a client for base. Without a token it makes up an
// admin_ one, which the API accepts as long as tokens are unsigned.
func NewClient(base, token string, timeout time.Duration) *Client {
	if token == "" {
		token = auth.NewAdminToken(time.Now())
	}
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetAuthToken(token),
		base:  strings.TrimRight(base, "/"),
		paths: DefaultPaths,
		token: token,
	}
}

// Token is the bearer token sent with every call.
func (c *Client) Token() string { return c.token }

// apiError is the {error, message} body of a failed call.
type apiError struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

// CallError is returned when every candidate path failed.
type CallError struct {
	Fn     string
	Status int
	Err    error
}

func (e *CallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Fn, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Fn, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// call tries fn under every candidate path; the first 2xx wins. Only the
// last failure is reported.
func (c *Client) call(ctx context.Context, method, fn string, query map[string]string, body, out interface{}) error {
	var last *CallError
	for _, p := range c.paths {
		var apiErr apiError
		req := c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetError(&apiErr)
		if out != nil {
			req.SetResult(out)
		}
		if body != nil {
			req.SetBody(body)
		}
		resp, err := req.Execute(method, c.base+p+"/"+fn)
		if err != nil {
			last = &CallError{Fn: fn, Err: err}
			if ctx.Err() != nil {
				return last
			}
			continue
		}
		if resp.IsSuccess() {
			return nil
		}
		msg := apiErr.Err
		if apiErr.Message != "" {
			msg += ": " + apiErr.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		last = &CallError{Fn: fn, Status: resp.StatusCode(), Err: errors.New(msg)}
	}
	if last == nil {
		return &CallError{Fn: fn, Err: errors.New("no candidate paths")}
	}
	return last
}

type ordersEnvelope struct {
	Orders []orders.Order `json:"orders"`
}

// AdminOrders fetches the admin listing.
func (c *Client) AdminOrders(ctx context.Context) ([]orders.Order, error) {
	var env ordersEnvelope
	if err := c.call(ctx, http.MethodGet, "admin-orders", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

// GetOrders fetches the plain listing.
func (c *Client) GetOrders(ctx context.Context) ([]orders.Order, error) {
	var env ordersEnvelope
	if err := c.call(ctx, http.MethodGet, "get-orders", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

// SyncDetail is the outcome for one synced order.
type SyncDetail struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SyncResults summarizes a sync-local-orders call.
type SyncResults struct {
	Total      int          `json:"total"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Details    []SyncDetail `json:"details"`
}

// SyncLocalOrders uploads orders known only to this machine.
func (c *Client) SyncLocalOrders(ctx context.Context, list []orders.Order) (SyncResults, error) {
	var env struct {
		Message string      `json:"message"`
		Results SyncResults `json:"results"`
	}
	if err := c.call(ctx, http.MethodPost, "sync-local-orders", nil, map[string]interface{}{"orders": list}, &env); err != nil {
		return SyncResults{}, err
	}
	return env.Results, nil
}

// UpdateStatus sets the status of an order on the server.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) error {
	return c.call(ctx, http.MethodPost, "update-order", nil, map[string]string{"orderId": id, "status": status}, nil)
}

// DeleteOrder removes an order on the server.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodPost, "delete-order", nil, map[string]string{"orderId": id}, nil)
}

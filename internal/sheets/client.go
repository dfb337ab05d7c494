// Package sheets talks to the spreadsheet web app that mirrors orders.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ridersklan/preorderflow/internal/orders"
)

var (
	ErrNotFound      = errors.New("order not found in sheet")
	ErrNotConfigured = errors.New("spreadsheet endpoint not configured")
)

// RemoteError is an {error: true, message} reply from the sheet script.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("sheet error: %s", e.Message)
}

type envelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Rows    []Row  `json:"rows"`
	Order   Row    `json:"order"`
}

// Client is a thin HTTP client for the sheet web app. Calls are not retried.
type Client struct {
	http    *resty.Client
	url     string
	apiKey  string
	nowFunc func() time.Time
}

// New builds a client for the web app at url. An empty url yields a client
// whose calls all fail with ErrNotConfigured.
func New(url, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		url:     url,
		apiKey:  apiKey,
		nowFunc: time.Now,
	}
}

// Configured reports whether an endpoint URL is set.
func (c *Client) Configured() bool { return c.url != "" }

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if c.apiKey != "" {
		req.SetQueryParam("apiKey", c.apiKey)
	}
	return req
}

func (c *Client) decode(resp *resty.Response, err error) (*envelope, error) {
	if err != nil {
		return nil, fmt.Errorf("sheet request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sheet returned status %d", resp.StatusCode())
	}
	var env envelope
	body := bytes.TrimSpace(resp.Body())
	if len(body) > 0 && body[0] == '[' {
		// older script versions answer getOrders with a bare row array
		if err := json.Unmarshal(body, &env.Rows); err != nil {
			return nil, fmt.Errorf("decode sheet rows: %w", err)
		}
		return &env, nil
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode sheet response: %w", err)
	}
	if env.Error {
		return &env, &RemoteError{Message: env.Message}
	}
	return &env, nil
}

// GetOrders reads every row of the sheet.
func (c *Client) GetOrders(ctx context.Context) ([]orders.Order, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	env, err := c.decode(c.request(ctx).
		SetQueryParam("action", "getOrders").
		Get(c.url))
	if err != nil {
		return nil, err
	}
	now := c.nowFunc()
	out := make([]orders.Order, 0, len(env.Rows))
	for _, row := range env.Rows {
		out = append(out, row.ToOrder(now))
	}
	return out, nil
}

// GetOrder reads a single row by id.
func (c *Client) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	env, err := c.decode(c.request(ctx).
		SetQueryParams(map[string]string{"action": "getOrder", "id": id}).
		Get(c.url))
	var remote *RemoteError
	if errors.As(err, &remote) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, remote.Message)
	}
	if err != nil {
		return nil, err
	}
	if len(env.Order) == 0 {
		return nil, ErrNotFound
	}
	o := env.Order.ToOrder(c.nowFunc())
	return &o, nil
}

// HasOrder reports whether a row with id exists.
func (c *Client) HasOrder(ctx context.Context, id string) (bool, error) {
	_, err := c.GetOrder(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	}
	return false, err
}

// AppendOrder adds the order as a new row.
func (c *Client) AppendOrder(ctx context.Context, o orders.Order) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	rec, err := toRecord(o)
	if err != nil {
		return fmt.Errorf("encode sheet record: %w", err)
	}
	_, err = c.decode(c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(rec).
		Post(c.url))
	return err
}

// UpdateOrderStatus asks the script to rewrite the status inside the
// row's Items cell.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	_, err := c.decode(c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"action": "updateOrderStatus", "id": id, "status": status}).
		Post(c.url))
	return err
}

package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridersklan/preorderflow/internal/orders"
)

func fixedClient(url string) *Client {
	c := New(url, "", time.Second)
	c.nowFunc = func() time.Time { return time.UnixMilli(1714557600000) }
	return c
}

func TestGetOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getOrders", r.URL.Query().Get("action"))
		assert.Equal(t, "k", r.URL.Query().Get("apiKey"))
		fmt.Fprint(w, `{"rows":[
			{"ID": 1001, "Name": "Jan Novak", "Email": "jan@example.com", "Phone": 777888999,
			 "Items": "[{\"name\":\"Jersey\",\"gender\":\"Men\",\"size\":\"L\",\"status\":\"paid\"}]",
			 "Timestamp": "2024-05-01T10:00:00.000Z"},
			{"Name": "", "Items": "broken {status: 'Added'"}
		]}`)
	}))
	defer srv.Close()

	c := fixedClient(srv.URL)
	c.apiKey = "k"
	got, err := c.GetOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "1001", first.ID)
	assert.Equal(t, "Jan Novak", first.Customer)
	assert.Equal(t, "777888999", first.Phone)
	assert.Equal(t, orders.StatusPaid, first.Status)
	assert.Equal(t, int64(1714557600000), first.Timestamp)
	assert.Equal(t, orders.SourceGoogleSheets, first.Source)
	require.Len(t, first.Items, 1)
	assert.Equal(t, "Jersey", first.Items[0].Name)

	second := got[1]
	assert.Regexp(t, `^ORD-1714557600000-\d{4}$`, second.ID)
	assert.Equal(t, "Unknown", second.Customer)
	assert.Equal(t, orders.OpaqueItems(), second.Items)
	assert.Equal(t, orders.StatusAdded, second.Status)
}

func TestGetOrders_Errors(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		is   error
	}{
		{name: "server error", code: http.StatusInternalServerError, body: "oops"},
		{name: "remote error", code: http.StatusOK, body: `{"error":true,"message":"List not found"}`},
		{name: "not json", code: http.StatusOK, body: `<html>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			_, err := fixedClient(srv.URL).GetOrders(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestGetOrders_BareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"ID":"A","Name":"Eva","Items":"[]"}]`)
	}))
	defer srv.Close()

	got, err := fixedClient(srv.URL).GetOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, orders.StatusPreordered, got[0].Status)
}

func TestGetOrders_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, "", 20*time.Millisecond)
	_, err := c.GetOrders(context.Background())
	assert.ErrorContains(t, err, "sheet request")
}

func TestGetOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getOrder", r.URL.Query().Get("action"))
		if r.URL.Query().Get("id") == "A" {
			fmt.Fprint(w, `{"order":{"ID":"A","Name":"Eva","Email":"eva@example.com","Items":"[]"}}`)
			return
		}
		fmt.Fprint(w, `{"error":true,"message":"Order not found"}`)
	}))
	defer srv.Close()
	c := fixedClient(srv.URL)

	o, err := c.GetOrder(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "Eva", o.Customer)

	_, err = c.GetOrder(context.Background(), "B")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := c.HasOrder(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, found)
	found, err = c.HasOrder(context.Background(), "B")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHasOrder_PropagatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := fixedClient(srv.URL).HasOrder(context.Background(), "A")
	assert.ErrorContains(t, err, "status 503")
}

func TestAppendOrderAndUpdateStatus(t *testing.T) {
	var bodies []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		data, _ := io.ReadAll(r.Body)
		var m map[string]string
		require.NoError(t, json.Unmarshal(data, &m))
		bodies = append(bodies, m)
		fmt.Fprint(w, `{"success":true}`)
	}))
	defer srv.Close()
	c := fixedClient(srv.URL)

	err := c.AppendOrder(context.Background(), orders.Order{
		ID:       "ORD-1",
		Customer: "Jan Novak",
		Email:    "jan@example.com",
		Items:    orders.Items{{Name: "Jersey", Gender: "Men", Size: "L"}},
		Status:   orders.StatusPreordered,
		Date:     "2024-05-01T10:00:00.000Z",
	})
	require.NoError(t, err)
	require.NoError(t, c.UpdateOrderStatus(context.Background(), "ORD-1", orders.StatusPaid))

	require.Len(t, bodies, 2)
	assert.Equal(t, "ORD-1", bodies[0]["id"])
	assert.Equal(t, "Jan Novak", bodies[0]["name"])
	assert.Equal(t, `[{"name":"Jersey","gender":"Men","size":"L","status":"preordered"}]`, bodies[0]["items"])
	assert.Equal(t, "2024-05-01T10:00:00.000Z", bodies[0]["timestamp"])

	assert.Equal(t, map[string]string{"action": "updateOrderStatus", "id": "ORD-1", "status": "paid"}, bodies[1])
}

func TestNotConfigured(t *testing.T) {
	c := New("", "", time.Second)
	assert.False(t, c.Configured())
	_, err := c.GetOrders(context.Background())
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.ErrorIs(t, c.AppendOrder(context.Background(), orders.Order{}), ErrNotConfigured)
}

func TestExtractStatus(t *testing.T) {
	tests := []struct {
		cell string
		want string
	}{
		{cell: `"{\"status\":\"paid\"}"`, want: "paid"},
		{cell: `"{\"metadata\":{\"status\":\"added\"}}"`, want: "added"},
		{cell: `"[{\"name\":\"Jersey\",\"status\":\"added\"}]"`, want: "added"},
		{cell: `"[{\"name\":\"Jersey\"}]"`, want: ""},
		{cell: `{"status":"paid"}`, want: "paid"},
		{cell: `"name: Jersey, status = PAID }"`, want: "paid"},
		{cell: `"nothing here"`, want: ""},
		{cell: ``, want: ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ExtractStatus(json.RawMessage(tc.cell)), tc.cell)
	}
}

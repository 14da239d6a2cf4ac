// Package testutil drives an http.Handler in-process, without a network
// listener, for tests that exercise the whole server.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Client issues requests directly against a handler.
type Client struct {
	handler http.Handler
	headers http.Header
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewClient returns a Client for h.
func NewClient(h http.Handler) *Client {
	return &Client{handler: h, headers: http.Header{}}
}

// WithHeader returns a copy of c that sends the header on every request.
func (c *Client) WithHeader(key, value string) *Client {
	headers := c.headers.Clone()
	headers.Set(key, value)
	return &Client{handler: c.handler, headers: headers}
}

// Get issues a GET request with no body.
func (c *Client) Get(t testing.TB, path string) *Response {
	t.Helper()
	return c.Do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

// Do serves req and returns the recorded response. A panic raised by the
// handler is not recovered here.
func (c *Client) Do(t testing.TB, req *http.Request) *Response {
	t.Helper()
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get(chimiddleware.RequestIDHeader) == "" {
		req.Header.Set(chimiddleware.RequestIDHeader, "test-"+t.Name())
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: body}
}

// JSON decodes the body into v, failing the test on error.
func (r *Response) JSON(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode JSON body %q: %v", r.Body, err)
	}
}

// Fields decodes the body as a JSON object keyed by field name.
func (r *Response) Fields(t testing.TB) map[string]json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	r.JSON(t, &fields)
	return fields
}

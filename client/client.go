// Package client is a Go client for the intrafeed HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"
)

// APIError is a non-success envelope returned by the server.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("intrafeed: %d (code %d): %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to one intrafeed server on behalf of a Session.
type Client struct {
	client  *resty.Client
	baseURL string
	session *Session
}

// New returns a client for baseURL (for example https://intranet.example/api/v1).
// A nil session keeps credentials in memory only.
func New(baseURL string, session *Session) *Client {
	if session == nil {
		session = &Session{}
	}
	c := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{client: c, baseURL: strings.TrimRight(baseURL, "/"), session: session}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Session exposes the credentials holder.
func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) r(ctx context.Context) *resty.Request {
	req := c.client.R().WithContext(ctx)
	if token := c.session.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// call sends a JSON request and decodes the envelope data into out.
// A 401 drops the stored credentials.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	req := c.r(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	res, err := req.Execute(method, c.baseURL+path)
	if err != nil {
		return err
	}

	if res.StatusCode() == http.StatusUnauthorized {
		_ = c.session.Invalidate()
	}

	var env envelope
	if err := json.Unmarshal(res.Bytes(), &env); err != nil {
		if res.IsError() {
			return &APIError{Status: res.StatusCode(), Message: http.StatusText(res.StatusCode())}
		}
		return fmt.Errorf("intrafeed: decode %s %s: %w", method, path, err)
	}
	if res.IsError() || env.Code != 0 {
		return &APIError{Status: res.StatusCode(), Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Package pdns is a thin client for the PowerDNS HTTP API. The same API
// surface is served by both the authoritative server and the recursor, so one
// client type covers both; they differ only in base URL and key.
package pdns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const apiPrefix = "/api/v1/servers/localhost"

// APIError is a non-2xx reply from the upstream API. The body is kept
// verbatim so the operator sees what PowerDNS actually said.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("upstream API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream API returned status %d: %s", e.StatusCode, body)
}

type Client struct {
	http   *http.Client
	base   string
	apiKey string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		http:   &http.Client{},
		base:   strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
	}
}

// ZoneID converts a zone name to its URL form. PowerDNS encodes the root
// zone "." as "=2E"; everything else is path-escaped as usual.
func ZoneID(name string) string {
	if name == "." {
		return "=2E"
	}
	return url.PathEscape(name)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+apiPrefix+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) Patch(ctx context.Context, path string, body interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

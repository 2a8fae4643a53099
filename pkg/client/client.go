// Package client submits task requests and normalizes every outcome into a
// plain result map: callers pattern-match on the body instead of handling
// HTTP-status exceptions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"ml-task-server/internal/common/httpx"
	"ml-task-server/internal/common/logger"
)

type Client struct {
	url  string
	http httpx.Doer
	log  logger.Logger
}

type Option func(*Client)

// WithTransport replaces the outbound HTTP primitive, mainly for tests.
func WithTransport(d httpx.Doer) Option {
	return func(c *Client) { c.http = d }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(url string, opts ...Option) *Client {
	c := &Client{
		url:  url,
		http: httpx.NewClient(30 * time.Second),
		log:  logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) URL() string { return c.url }

// SetURL replaces the target endpoint. No reachability check is performed.
func (c *Client) SetURL(url string) { c.url = url }

// Request posts the {inputs, parameters} envelope and normalizes the outcome:
//   - non-2xx: the response body is returned unchanged (it is assumed to be a
//     structured error or status payload already)
//   - 2xx JSON: the parsed body
//   - 2xx without a JSON content type: a synthesized "Unknown error" result
//
// A returned error means the call itself failed (network, context); HTTP
// failure statuses never become Go errors.
func (c *Client) Request(ctx context.Context, inputs, parameters map[string]interface{}) (map[string]interface{}, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"inputs":     inputs,
		"parameters": parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var out map[string]interface{}
		if err := json.Unmarshal(body, &out); err != nil {
			return unknownError(resp.StatusCode, "failure body is not JSON"), nil
		}
		return out, nil
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		c.log.Warn("response is not JSON", map[string]interface{}{
			"url":          c.url,
			"content_type": resp.Header.Get("Content-Type"),
		})
		return unknownError(resp.StatusCode, "response is not JSON"), nil
	}

	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return unknownError(resp.StatusCode, "response is not valid JSON"), nil
	}
	return out, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func unknownError(status int, detail string) map[string]interface{} {
	return map[string]interface{}{
		"status": "Unknown error",
		"errors": []interface{}{
			map[string]interface{}{
				"msg": fmt.Sprintf("Unknown error (HTTP %d): %s", status, detail),
			},
		},
	}
}

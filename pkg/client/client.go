// Package client is a typed HTTP client for the DevConnector API.
//
// A Client holds no credentials. Protected calls take the bearer token
// returned by Login as an argument, so one Client can serve many users.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"devconnector/internal/service"
)

// Input types shared with the server.
type (
	RegisterInput   = service.RegisterInput
	LoginInput      = service.LoginInput
	ProfileInput    = service.UpsertProfileInput
	ExperienceInput = service.ExperienceInput
	EducationInput  = service.EducationInput
	PostInput       = service.PostInput
)

// Client calls the API rooted at BaseURL (for example "http://localhost:5000/api").
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error is a non-2xx response. Fields holds per-field messages when the
// server returned them (validation, conflicts, missing records).
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("devconnector: %d %s", e.Status, e.Message)
	case len(e.Fields) > 0:
		return fmt.Sprintf("devconnector: %d %v", e.Status, e.Fields)
	default:
		return fmt.Sprintf("devconnector: status %d", e.Status)
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Page selects a window of a list. Zero Limit means everything.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) query() url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		if !strings.HasPrefix(token, "Bearer ") {
			token = "Bearer " + token
		}
		req.Header.Set("Authorization", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError reads either the {error, code} envelope or a flat field map.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	if code, ok := body["code"].(string); ok {
		apiErr.Code = code
		apiErr.Message, _ = body["error"].(string)
		return apiErr
	}

	apiErr.Fields = make(map[string]string, len(body))
	for k, v := range body {
		if s, ok := v.(string); ok {
			apiErr.Fields[k] = s
		}
	}
	return apiErr
}

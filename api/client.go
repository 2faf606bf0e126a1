package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "parking-cli/1.0"
)

var (
	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrRequest wraps transport-level failures.
	ErrRequest = errors.New("parking api: request failed")

	// ErrUnexpectedStatus is returned for any other non-2xx answer.
	ErrUnexpectedStatus = errors.New("parking api: unexpected status")
)

// Logger is the subset of the application logger the client needs. Failures
// are returned to the caller, which decides how loudly to report them.
type Logger interface {
	Debug(format string, v ...interface{})
}

// Recorder receives one observation per remote call.
type Recorder interface {
	ObserveAPICall(operation, outcome string, elapsed time.Duration)
}

type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
	Log       Logger
	Metrics   Recorder
	Now       func() time.Time
}

// NewClient builds a client for baseURL. A zero timeout keeps the default.
func NewClient(baseURL string, timeout time.Duration, log Logger, metrics Recorder) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		BaseURL:   baseURL,
		UserAgent: defaultUserAgent,
		Log:       log,
		Metrics:   metrics,
		Now:       time.Now,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, payload any) (*http.Request, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return nil, fmt.Errorf("%w: api base url is not configured", ErrRequest)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base url: %v", ErrRequest, err)
	}
	path = strings.TrimPrefix(path, "/")
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + path
	if query != nil {
		base.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, base.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes req and returns the raw body of a 2xx answer.
func (c *Client) do(operation string, req *http.Request) ([]byte, error) {
	start := time.Now()
	body, err := c.roundTrip(req)
	c.observe(operation, err, time.Since(start))
	if err != nil {
		if c.Log != nil {
			c.Log.Debug("%s %s failed: %v", req.Method, req.URL.Path, err)
		}
		return nil, err
	}
	if c.Log != nil {
		c.Log.Debug("%s %s ok", req.Method, req.URL.Path)
	}
	return body, nil
}

func (c *Client) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRequest, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) doJSON(operation string, req *http.Request, dest any) error {
	body, err := c.do(operation, req)
	if err != nil {
		return err
	}
	if dest == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) doStatus(operation string, req *http.Request) error {
	_, err := c.do(operation, req)
	return err
}

func (c *Client) observe(operation string, err error, elapsed time.Duration) {
	if c.Metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.Metrics.ObserveAPICall(operation, outcome, elapsed)
}

func (c *Client) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

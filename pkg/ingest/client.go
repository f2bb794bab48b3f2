package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// StatusError reports an HTTP response whose status code is not accepted for the operation.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code %d", e.Op, e.Code)
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	BatchPath     string
	StatusPath    string
	StatusTimeout time.Duration
	SendTimeout   time.Duration

	// HTTPClient overrides the pooled client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the tracking API's liveness and batch-ingest endpoints.
type Client struct {
	batchURL      string
	statusURL     string
	statusTimeout time.Duration
	sendTimeout   time.Duration
	httpClient    *http.Client
}

// NewClient validates the endpoint configuration and returns a Client.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}

	return &Client{
		batchURL:      base.String() + ensureLeadingSlash(opts.BatchPath),
		statusURL:     base.String() + ensureLeadingSlash(opts.StatusPath),
		statusTimeout: opts.StatusTimeout,
		sendTimeout:   opts.SendTimeout,
		httpClient:    httpClient,
	}, nil
}

// BatchURL returns the full batch-ingest endpoint.
func (c *Client) BatchURL() string {
	return c.batchURL
}

// StatusURL returns the full liveness endpoint.
func (c *Client) StatusURL() string {
	return c.statusURL
}

// CheckStatus performs one liveness check. Only 200 counts as healthy.
func (c *Client) CheckStatus(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, c.statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach tracking api: %w", err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Op: "status check", Code: resp.StatusCode}
	}
	return nil
}

// SendBatch posts batch as a JSON array to the batch-ingest endpoint and returns the
// response status code. 200 OK and 202 Accepted are successes.
func (c *Client) SendBatch(ctx context.Context, batch any) (int, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return 0, fmt.Errorf("failed to encode batch: %w", err)
	}

	ctx, cancel := withTimeout(ctx, c.sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.batchURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}
	defer drain(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return resp.StatusCode, nil
	default:
		return resp.StatusCode, &StatusError{Op: "send batch", Code: resp.StatusCode}
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// drain consumes the rest of the body so the connection can be reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	body.Close()
}

func ensureLeadingSlash(p string) string {
	if p == "" || strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

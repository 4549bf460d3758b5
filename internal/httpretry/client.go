// Package httpretry provides an HTTP GET client that retries transient failures.
package httpretry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts is the total number of attempts, including the first.
	DefaultMaxAttempts = 3

	// DefaultInitialInterval is the wait before the first retry. It doubles per retry.
	DefaultInitialInterval = 1 * time.Second

	defaultTimeout = 10 * time.Second
)

// ErrRetriesExhausted is returned when every attempt ended with a retryable status.
var ErrRetriesExhausted = errors.New("retries exhausted")

// retryableStatus lists the statuses worth another attempt.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues GET requests with bounded exponential backoff.
// Only GET is supported, so every retried request is idempotent.
type Client struct {
	httpClient      *http.Client
	maxAttempts     int
	initialInterval time.Duration
	logger          *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMaxAttempts sets the total attempt ceiling.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithInitialInterval sets the wait before the first retry.
func WithInitialInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.initialInterval = d
		}
	}
}

// WithLogger sets the logger used for retry events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client with a dedicated transport.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		maxAttempts:     DefaultMaxAttempts,
		initialInterval: DefaultInitialInterval,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request, retrying on 429 and 5xx gateway statuses.
// Other statuses are returned as-is. Transport errors are returned without retry.
// ErrRetriesExhausted is returned when the attempt ceiling is reached.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers http.Header) (*Response, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var (
		resp     *Response
		attempts int
		last     int
	)

	op := func() error {
		attempts++
		r, err := c.doSingleRequest(ctx, reqURL, headers)
		if err != nil {
			return backoff.Permanent(err)
		}
		if retryableStatus[r.StatusCode] {
			last = r.StatusCode
			c.logger.Debug("retryable status",
				zap.String("url", rawURL),
				zap.Int("status", r.StatusCode),
				zap.Int("attempt", attempts),
			)
			return fmt.Errorf("status %d", r.StatusCode)
		}
		resp = r
		return nil
	}

	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		if resp == nil && last != 0 && ctx.Err() == nil && attempts >= c.maxAttempts {
			return nil, fmt.Errorf("%w after %d attempts: last status %d", ErrRetriesExhausted, attempts, last)
		}
		return nil, err
	}

	return resp, nil
}

// CloseIdleConnections releases pooled connections held by the client.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// newBackOff returns a fresh schedule: initial, 2x initial, ... up to maxAttempts-1 waits.
func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = c.initialInterval << uint(c.maxAttempts)
	bo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx)
}

// doSingleRequest performs one HTTP request and reads the body.
func (c *Client) doSingleRequest(ctx context.Context, reqURL string, headers http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

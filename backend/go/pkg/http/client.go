package http

import (
	"WebShop_AI/backend/go/internal/config"
	"WebShop_AI/backend/go/pkg/circuitbreaker"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrResponseTooLarge is returned when an upstream body exceeds the read bound.
var ErrResponseTooLarge = errors.New("upstream response body too large")

// ClientOptions configures a Client.
type ClientOptions struct {
	// Timeout bounds the whole exchange, connection through body read.
	Timeout time.Duration
	// MaxResponseBytes bounds how much of a reply body is read.
	MaxResponseBytes int64
	// CircuitBreaker wraps calls in a breaker when enabled.
	CircuitBreaker config.CircuitBreakerConfig
	// OnBreakerStateChange observes breaker transitions; may be nil.
	OnBreakerStateChange func(name string, from, to circuitbreaker.State)
	// Transport overrides the round tripper; nil uses a cloned default transport.
	Transport http.RoundTripper
}

// Client is a custom HTTP client that wraps the standard http.Client
// and provides optional circuit breaking and bounded body reads.
type Client struct {
	httpClient       *http.Client
	breaker          circuitbreaker.CircuitBreaker
	maxResponseBytes int64
}

// Reply is a fully read upstream response.
type Reply struct {
	StatusCode int
	Body       []byte
}

// NewClient creates a Client. A zero Timeout means no client-side deadline,
// so callers should always set one.
func NewClient(opts ClientOptions) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		maxResponseBytes: opts.MaxResponseBytes,
	}
	if opts.CircuitBreaker.Enabled {
		c.breaker = circuitbreaker.New(circuitbreaker.Settings{
			Name:             "upstream",
			FailureThreshold: opts.CircuitBreaker.FailureThreshold,
			SuccessThreshold: opts.CircuitBreaker.SuccessThreshold,
			Timeout:          opts.CircuitBreaker.Timeout,
			OnStateChange:    opts.OnBreakerStateChange,
		})
	}
	return c
}

// statusError marks a 5xx reply as a breaker failure without hiding the reply.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server error: received status code %d", e.code)
}

// Do executes an HTTP request with circuit breaker protection.
// Status codes >= 500 count as breaker failures but the response is still returned.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, &statusError{code: resp.StatusCode}
		}
		return resp, nil
	})

	var se *statusError
	if errors.As(err, &se) {
		return res.(*http.Response), nil
	}
	if err != nil {
		return nil, err
	}
	return res.(*http.Response), nil
}

// PostJSON posts body to url and reads the reply within the configured bound.
// Errors other than ErrResponseTooLarge mean the exchange itself failed.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte) (*Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.exchange(req)
}

// Get issues a GET request and reads the reply within the configured bound.
func (c *Client) Get(ctx context.Context, url string) (*Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.exchange(req)
}

// Delete issues a DELETE request and reads the reply within the configured bound.
func (c *Client) Delete(ctx context.Context, url string) (*Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.exchange(req)
}

func (c *Client) exchange(req *http.Request) (*Reply, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.maxResponseBytes > 0 {
		reader = io.LimitReader(resp.Body, c.maxResponseBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if c.maxResponseBytes > 0 && int64(len(data)) > c.maxResponseBytes {
		return nil, ErrResponseTooLarge
	}
	return &Reply{StatusCode: resp.StatusCode, Body: data}, nil
}

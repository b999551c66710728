// Package httpfetch is the default Fetcher: a net/http-backed transport
// with connection reuse, proxy support, and per-request timeouts. It is the
// out-of-the-box collaborator for internal/fetcher.Fetcher; a headless
// browser or any other transport can satisfy the same interface without
// depending on this package.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rohmanhakim/ethicrawl/internal/fetcher"
	"github.com/rohmanhakim/ethicrawl/internal/headers"
	"github.com/rohmanhakim/ethicrawl/pkg/failure"
	"github.com/rohmanhakim/ethicrawl/pkg/retry"
	"github.com/rohmanhakim/ethicrawl/pkg/timeutil"
)

// Client is the default Fetcher implementation. All Clients sharing the
// same *http.Transport reuse its connection pool; NewClient builds one
// transport per Client, which is the right granularity for a single
// Crawler process.
type Client struct {
	mu              sync.RWMutex
	userAgent       string
	defaultHeaders  *headers.Headers
	httpClient      *http.Client
	retryParam      retry.RetryParam
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithProxy sets the transport's proxy function. When unset, the
// transport falls back to http.ProxyFromEnvironment.
func WithProxy(proxy func(*http.Request) (*url.URL, error)) Option {
	return func(c *Client) {
		if t, ok := c.httpClient.Transport.(*http.Transport); ok {
			t.Proxy = proxy
		}
	}
}

// WithDefaultHeaders sets headers merged beneath any caller-supplied
// request headers.
func WithDefaultHeaders(h *headers.Headers) Option {
	return func(c *Client) {
		c.defaultHeaders = h
	}
}

// WithRetryParam overrides the retry policy applied to transport failures.
// The default makes up to 3 attempts at transient network errors, with
// exponential backoff between them.
func WithRetryParam(p retry.RetryParam) Option {
	return func(c *Client) {
		c.retryParam = p
	}
}

// WithRetryParamForTest configures a single-attempt, zero-backoff retry
// policy so tests exercising transport failures don't pay real retry delay.
func WithRetryParamForTest() Option {
	return WithRetryParam(retry.NewRetryParam(0, 0, 1, 1, timeutil.NewBackoffParam(0, 1, 0)))
}

// NewClient builds a Client with a shared transport tuned for a
// polite, long-running crawl: modest per-host connection reuse, no global
// request timeout (timeouts are per-request, from Request.Timeout()).
func NewClient(userAgent string, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 8,
		Proxy:               http.ProxyFromEnvironment,
	}
	c := &Client{
		userAgent:      userAgent,
		defaultHeaders: headers.New(),
		httpClient:     &http.Client{Transport: transport},
		retryParam: retry.NewRetryParam(
			200*time.Millisecond,
			100*time.Millisecond,
			time.Now().UnixNano(),
			3,
			timeutil.NewBackoffParam(200*time.Millisecond, 2.0, 5*time.Second),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserAgent returns the effective user-agent this Client sends.
func (c *Client) UserAgent() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userAgent
}

// SetUserAgent updates the user-agent sent on subsequent requests.
func (c *Client) SetUserAgent(ua string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userAgent = ua
}

// Close releases the transport's idle connections.
func (c *Client) Close() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.httpClient.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

// Get performs req, retrying transient transport failures per the
// configured RetryParam. A non-2xx HTTP response is not an error: it is
// returned as a Response for the caller to interpret. When every attempt
// fails, the last attempt's *fetcher.TransportError is returned.
func (c *Client) Get(ctx context.Context, req fetcher.Request) (fetcher.Response, error) {
	var lastErr failure.ClassifiedError
	task := func() (fetcher.Response, failure.ClassifiedError) {
		resp, err := c.doOnce(ctx, req)
		if err != nil {
			lastErr = err
		}
		return resp, err
	}
	result := retry.Retry(c.retryParam, task)
	if err := result.Err(); err != nil {
		if lastErr != nil {
			return fetcher.Response{}, lastErr
		}
		return fetcher.Response{}, err
	}
	return result.Value(), nil
}

func (c *Client) doOnce(ctx context.Context, req fetcher.Request) (fetcher.Response, failure.ClassifiedError) {
	res := req.Resource()
	reqCtx, cancel := context.WithTimeout(ctx, req.Timeout())
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, res.Url().String(), nil)
	if err != nil {
		return fetcher.Response{}, &fetcher.TransportError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     fetcher.ErrCauseRequestInvalid,
		}
	}

	c.mu.RLock()
	merged := c.defaultHeaders.Merge(req.Headers())
	ua := c.userAgent
	c.mu.RUnlock()
	if _, ok := merged.Get("User-Agent"); !ok {
		merged.Set("User-Agent", ua)
	}
	merged.Each(func(k, v string) { httpReq.Header.Set(k, v) })

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fetcher.Response{}, classifyTransportError(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fetcher.Response{}, &fetcher.TransportError{
			Message:   fmt.Sprintf("reading response body: %v", err),
			Retryable: true,
			Cause:     fetcher.ErrCauseReadBody,
		}
	}

	respHeaders := headers.New()
	for k, vs := range httpResp.Header {
		if len(vs) > 0 {
			respHeaders.Set(k, vs[0])
		}
	}

	return fetcher.NewResponse(res, req, httpResp.StatusCode, respHeaders, body, string(body)), nil
}

func classifyTransportError(err error) *fetcher.TransportError {
	switch {
	case isTimeout(err):
		return &fetcher.TransportError{Message: err.Error(), Retryable: true, Cause: fetcher.ErrCauseTimeout}
	case isContextCanceled(err):
		return &fetcher.TransportError{Message: err.Error(), Retryable: false, Cause: fetcher.ErrCauseContextCanceled}
	default:
		return &fetcher.TransportError{Message: err.Error(), Retryable: true, Cause: fetcher.ErrCauseConnectionRefused}
	}
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if t, ok := err.(timeouter); ok {
		return t.Timeout()
	}
	return false
}

func isContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Package httpx builds the retrying HTTP client shared by upstream adapters.
package httpx

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dingerzone/seatfinder/pkg/logger"
)

// Default client settings.
const (
	defaultTimeout  = 15 * time.Second
	defaultRetryMax = 3
	retryWaitMin    = 250 * time.Millisecond
	retryWaitMax    = 4 * time.Second
	userAgent       = "seatfinder/1.0"
)

// Option configures the client.
type Option func(*retryablehttp.Client)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *retryablehttp.Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

// WithRetryMax sets the number of retries after the first attempt.
func WithRetryMax(n int) Option {
	return func(c *retryablehttp.Client) {
		if n >= 0 {
			c.RetryMax = n
		}
	}
}

// WithRetryWait sets the backoff bounds.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = minWait
		c.RetryWaitMax = maxWait
	}
}

// New returns a retrying client that logs through l.
func New(l logger.Logger, opts ...Option) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.HTTPClient.Timeout = defaultTimeout
	c.RetryMax = defaultRetryMax
	c.RetryWaitMin = retryWaitMin
	c.RetryWaitMax = retryWaitMax
	c.Logger = logger.NewLeveled(l)
	c.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, _ int) {
		req.Header.Set("User-Agent", userAgent)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

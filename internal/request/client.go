package request

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kevin111234/economy-lab/internal/logger"
	"resty.dev/v3"
)

const _jitterMax = 0.25

// StatusError is a terminal non-2xx response.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.Code, e.URL, e.Body)
}

// Client issues single GETs against one base URL and recovers from
// rate-limiting and transient server failures with exponential backoff. It
// knows nothing about any particular provider.
type Client struct {
	c          *resty.Client
	maxRetries int
	logger     logger.Logger

	// seams for tests
	sleep  func(time.Duration)
	jitter func() float64
}

func NewClient(baseURL string, timeout time.Duration, maxRetries int, log logger.Logger) *Client {
	if log == nil {
		log = logger.Nop{}
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		c: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		maxRetries: maxRetries,
		logger:     log,
		sleep:      time.Sleep,
		jitter:     rand.Float64,
	}
}

func (c *Client) Close() error {
	return c.c.Close()
}

// GetJSON fetches baseURL+path with params and decodes the JSON body into
// out. 429 honors a numeric Retry-After header, otherwise it and 5xx wait
// 2^attempt + jitter seconds; network failures retry without an extra delay.
// Each classification is retried up to maxRetries+1 total attempts. Any other
// non-2xx status is terminal, and a body that is not valid JSON fails
// immediately because it would be just as malformed on the next attempt.
func (c *Client) GetJSON(ctx context.Context, path string, params map[string]string, out any) error {
	masked := logger.MaskParams(params)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.c.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(path)
		if err != nil {
			lastErr = err
			c.logger.Warnf("GET %s params=%v attempt=%d failed: %s", path, masked, attempt, err)
			continue
		}

		status := resp.StatusCode()
		url := resp.Request.URL

		switch {
		case status == http.StatusTooManyRequests:
			wait := c.retryAfter(resp, attempt)
			closeBody(resp, c.logger)
			c.logger.Warnf("GET %s params=%v status=%d attempt=%d rate limited, waiting %.3fs",
				url, masked, status, attempt, wait.Seconds())
			lastErr = &StatusError{Code: status, URL: url}
			c.sleep(wait)
			continue
		case status >= 500 && status <= 599:
			wait := c.backoff(attempt)
			closeBody(resp, c.logger)
			c.logger.Warnf("GET %s params=%v status=%d attempt=%d server error, waiting %.3fs",
				url, masked, status, attempt, wait.Seconds())
			lastErr = &StatusError{Code: status, URL: url}
			c.sleep(wait)
			continue
		case status < 200 || status > 299:
			body := resp.String()
			closeBody(resp, c.logger)
			return &StatusError{Code: status, URL: url, Body: body}
		}

		body := resp.Bytes()
		closeBody(resp, c.logger)
		c.logger.Debugf("GET %s params=%v status=%d attempt=%d bytes=%d", url, masked, status, attempt, len(body))

		if err := sonic.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: can't decode response from %s", err, url)
		}
		return nil
	}

	return fmt.Errorf("%w: GET %s params=%v failed after %d attempts", lastErr, path, masked, c.maxRetries+1)
}

// retryAfter prefers a numeric Retry-After header and falls back to the
// exponential schedule.
func (c *Client) retryAfter(resp *resty.Response, attempt int) time.Duration {
	if v := resp.Header().Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return c.backoff(attempt)
}

func (c *Client) backoff(attempt int) time.Duration {
	secs := math.Pow(2, float64(attempt)) + c.jitter()*_jitterMax
	return time.Duration(secs * float64(time.Second))
}

func closeBody(resp *resty.Response, log logger.Logger) {
	if err := resp.Body.Close(); err != nil {
		log.Warnf("%s: can't close response body", err)
	}
}

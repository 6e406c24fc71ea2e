package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Config holds limiter, retry and timeout configuration.
// MaxRetries is the total number of attempts; 1 means a single round trip.
type Config struct {
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns a single-attempt configuration with a generous rate limit.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        1,
		BaseDelay:         500 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		Timeout:           15 * time.Second,
		RequestsPerSecond: 20,
		Burst:             5,
	}
}

// Client wraps http.Client with rate limiting and optional retries.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	config  Config
	logger  *slog.Logger
}

// New creates a new Client with a default http.Client.
func New(cfg Config, logger *slog.Logger) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a Client around a caller-supplied http.Client.
func NewWithHTTPClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &Client{
		http:    httpClient,
		limiter: newLimiter(cfg),
		config:  cfg,
		logger:  logger,
	}
}

func newLimiter(cfg Config) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

// Do executes an HTTP request. Every attempt waits for a limiter token first.
// When MaxRetries > 1, GET/HEAD requests are retried on 429, 5xx gateway
// errors and transient network errors.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	var lastResp *http.Response

	for attempt := range c.config.MaxRetries {
		if attempt > 0 {
			if err := c.waitBeforeRetry(req.Context(), attempt, lastResp, req.URL.Path); err != nil {
				return nil, err
			}
		}

		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}
			if !isIdempotent(req.Method) {
				return nil, err
			}
			lastErr = err
			lastResp = nil
			continue
		}

		if attempt == c.config.MaxRetries-1 || !shouldRetry(resp.StatusCode, req.Method) {
			return resp, nil
		}

		lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Path)
		lastResp = resp
		_ = resp.Body.Close()
	}

	if c.config.MaxRetries == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.MaxRetries, lastErr)
}

func (c *Client) waitBeforeRetry(ctx context.Context, attempt int, lastResp *http.Response, path string) error {
	delay := c.backoff(attempt)
	if d := retryAfterDelay(lastResp); d > delay {
		delay = d
	}
	if delay > c.config.MaxDelay {
		delay = c.config.MaxDelay
	}

	c.logger.Debug("retrying request",
		slog.Int("attempt", attempt+1),
		slog.String("delay", delay.String()),
		slog.String("path", path),
	)

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func retryAfterDelay(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// isIdempotent reports whether a request can be replayed without a body.
func isIdempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// shouldRetry returns true for status codes that warrant another attempt.
func shouldRetry(statusCode int, method string) bool {
	if !isIdempotent(method) {
		return false
	}
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// backoff calculates the delay for a given attempt with jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.config.BaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.config.MaxDelay) {
		delay = float64(c.config.MaxDelay)
	}
	jitter := delay * 0.2 * rand.Float64() // #nosec G404
	return time.Duration(delay + jitter)
}

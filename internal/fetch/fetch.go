package fetch

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pulkitch/strategy-backtester/internal/config"
	"github.com/pulkitch/strategy-backtester/internal/ingest"
	"github.com/pulkitch/strategy-backtester/internal/series"
)

// Fetcher downloads OHLCV CSV datasets over HTTP.
type Fetcher interface {
	FetchCSV(ctx context.Context, url string) (*series.Series, error)
}

// Client is a rate-limited HTTP dataset fetcher.
// It implements the Fetcher interface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a dataset fetch client.
func NewClient(cfg config.Fetch, logger *zap.Logger) *Client {
	client := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// FetchCSV downloads a CSV document and runs it through the ingestion
// pipeline. Transient failures (429, 5xx, network errors) are retried
// with exponential backoff; anything else surfaces immediately.
func (c *Client) FetchCSV(ctx context.Context, url string) (*series.Series, error) {
	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %q: %w", url, err)
	}

	s, err := ingest.ReadCSV(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %q: %w", url, err)
	}

	c.logger.Info("Fetched remote dataset",
		zap.String("url", url),
		zap.Int("bars", s.Len()))
	return s, nil
}

// doRequest executes the GET with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, url string) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("url", url))
		resp, err = c.client.R().SetContext(ctx).Get(url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if err == nil && resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, convErr := strconv.Atoi(retryAfterHeader); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s", resp.Status())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err == nil && resp != nil {
		err = fmt.Errorf("status %s", resp.Status())
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

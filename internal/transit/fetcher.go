package transit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/randytsao24/meetmta/internal/metrics"
)

// Fetcher returns the raw bytes of one upstream feed
type Fetcher interface {
	Fetch(ctx context.Context, feedID string) ([]byte, error)
}

// FetchError is a network failure or non-2xx response from the feed endpoint
type FetchError struct {
	FeedID     string
	StatusCode int // zero for transport errors
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feed %s returned status %d", e.FeedID, e.StatusCode)
	}
	return fmt.Sprintf("fetching feed %s: %v", e.FeedID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPFetcher fetches feeds from the MTA API over HTTP
type HTTPFetcher struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	retries   uint64
	retryWait time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// HTTPFetcherOptions configures an HTTPFetcher
type HTTPFetcherOptions struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	Client    *http.Client
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewHTTPFetcher creates a fetcher for the given endpoint root
func NewHTTPFetcher(opts HTTPFetcherOptions) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL:   opts.BaseURL,
		apiKey:    opts.APIKey,
		client:    opts.Client,
		retryWait: opts.RetryWait,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
	if f.baseURL == "" {
		f.baseURL = DefaultFeedBaseURL
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Retries > 0 {
		f.retries = uint64(opts.Retries)
	}
	if f.retryWait <= 0 {
		f.retryWait = 500 * time.Millisecond
	}
	if f.metrics == nil {
		f.metrics = metrics.Discard()
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch performs a GET for feedID, retrying transport errors and 5xx responses
func (f *HTTPFetcher) Fetch(ctx context.Context, feedID string) ([]byte, error) {
	start := time.Now()
	defer func() {
		f.metrics.FeedFetchSeconds.WithLabelValues(feedID).Observe(time.Since(start).Seconds())
	}()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.retryWait
	b.MaxElapsedTime = 0

	body, err := backoff.RetryNotifyWithData(
		func() ([]byte, error) {
			return f.fetchOnce(ctx, feedID)
		},
		backoff.WithContext(backoff.WithMaxRetries(b, f.retries), ctx),
		func(err error, d time.Duration) {
			f.logger.Debug("retrying feed fetch", "feed", feedID, "wait", d.String(), "error", err)
		},
	)
	if err != nil {
		f.metrics.FeedFetchesTotal.WithLabelValues(feedID, "error").Inc()
		return nil, err
	}

	f.metrics.FeedFetchesTotal.WithLabelValues(feedID, "ok").Inc()
	f.metrics.FeedBytesTotal.WithLabelValues(feedID).Add(float64(len(body)))
	return body, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, feedID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, FeedURL(f.baseURL, feedID), nil)
	if err != nil {
		return nil, backoff.Permanent(&FetchError{FeedID: feedID, Err: err})
	}
	req.Header.Set("Accept", "application/x-protobuf")
	req.Header.Set("Cache-Control", "no-cache")
	if f.apiKey != "" {
		req.Header.Set("x-api-key", f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{FeedID: feedID, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fetchErr := &FetchError{FeedID: feedID, StatusCode: resp.StatusCode}
		if resp.StatusCode < 500 {
			return nil, backoff.Permanent(fetchErr)
		}
		return nil, fetchErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{FeedID: feedID, Err: fmt.Errorf("reading response: %w", err)}
	}
	return body, nil
}

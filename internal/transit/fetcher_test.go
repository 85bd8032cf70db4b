package transit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randytsao24/meetmta/internal/transit"
)

func newTestFetcher(url string, retries int) *transit.HTTPFetcher {
	return transit.NewHTTPFetcher(transit.HTTPFetcherOptions{
		BaseURL:   url,
		APIKey:    "secret",
		Timeout:   2 * time.Second,
		Retries:   retries,
		RetryWait: time.Millisecond,
	})
}

func TestHTTPFetcherSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nyct%2Fgtfs-l", r.URL.EscapedPath())
		assert.Equal(t, "application/x-protobuf", r.Header.Get("Accept"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte{0x0a, 0x00})
	}))
	defer srv.Close()

	body, err := newTestFetcher(srv.URL, 0).Fetch(context.Background(), transit.FeedL)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x00}, body)
}

func TestHTTPFetcherRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL, 2).Fetch(context.Background(), transit.FeedG)
	require.Error(t, err)

	var fetchErr *transit.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	assert.Equal(t, transit.FeedG, fetchErr.FeedID)
	assert.Equal(t, int32(3), hits.Load())
}

func TestHTTPFetcherDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL, 3).Fetch(context.Background(), transit.FeedACE)

	var fetchErr *transit.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestFetcher(url, 0).Fetch(context.Background(), transit.FeedL)

	var fetchErr *transit.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
	assert.Error(t, fetchErr.Unwrap())
}

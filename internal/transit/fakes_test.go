package transit_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randytsao24/meetmta/internal/location"
	"github.com/randytsao24/meetmta/internal/models"
)

// fakeFetcher serves canned bytes or errors per feed id
type fakeFetcher struct {
	mu    sync.Mutex
	data  map[string][]byte
	errs  map[string]error
	calls atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{data: map[string][]byte{}, errs: map[string]error{}}
}

func (f *fakeFetcher) set(feedID string, data []byte, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[feedID] = data
	f.errs[feedID] = err
}

func (f *fakeFetcher) Fetch(_ context.Context, feedID string) ([]byte, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[feedID]; err != nil {
		return nil, err
	}
	data, ok := f.data[feedID]
	if !ok {
		return nil, fmt.Errorf("no data for %s", feedID)
	}
	return data, nil
}

// FetchFeed lets the fake stand in for a gateway
func (f *fakeFetcher) FetchFeed(ctx context.Context, feedID string) ([]byte, error) {
	return f.Fetch(ctx, feedID)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type stubStations map[string]models.Station

func (s stubStations) Get(id string) (models.Station, error) {
	st, ok := s[id]
	if !ok {
		return models.Station{}, fmt.Errorf("%w: %s", location.ErrStationNotFound, id)
	}
	return st, nil
}

package transit

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/randytsao24/meetmta/internal/cache"
	"github.com/randytsao24/meetmta/internal/metrics"
)

// DefaultFeedTTL is how long fetched feed bytes are reused without a network call
const DefaultFeedTTL = 30 * time.Second

// FeedGateway fetches feed bytes through a per-feed cache. Concurrent
// refreshes of the same feed share one upstream request.
type FeedGateway struct {
	fetcher Fetcher
	cache   *cache.Cache[[]byte]
	timeout time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// GatewayOptions configures a FeedGateway
type GatewayOptions struct {
	TTL     time.Duration
	Timeout time.Duration // per-fetch deadline; zero leaves it to the fetcher
	Clock   func() time.Time
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// NewFeedGateway creates a gateway over fetcher
func NewFeedGateway(fetcher Fetcher, opts GatewayOptions) *FeedGateway {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultFeedTTL
	}
	cacheOpts := []cache.Option{cache.WithRetention(0)}
	if opts.Clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Clock))
	}

	g := &FeedGateway{
		fetcher: fetcher,
		cache:   cache.New[[]byte](ttl, cacheOpts...),
		timeout: opts.Timeout,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	if g.metrics == nil {
		g.metrics = metrics.Discard()
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Close releases the cache's background cleanup
func (g *FeedGateway) Close() {
	g.cache.Close()
}

// FetchFeed returns the bytes of feedID. A fresh cached copy is returned
// without a network call; when the fetch fails, any earlier copy is returned
// no matter how old. The error is non-nil only when neither is available.
func (g *FeedGateway) FetchFeed(ctx context.Context, feedID string) ([]byte, error) {
	if data, ok := g.cache.Get(feedID); ok {
		g.metrics.FeedCacheTotal.WithLabelValues(feedID, "hit").Inc()
		return data, nil
	}
	g.metrics.FeedCacheTotal.WithLabelValues(feedID, "miss").Inc()

	ch := g.group.DoChan(feedID, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if g.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, g.timeout)
			defer cancel()
		}
		data, err := g.fetcher.Fetch(fetchCtx, feedID)
		if err != nil {
			return nil, err
		}
		g.cache.Set(feedID, data)
		g.logger.Debug("feed refreshed",
			"feed", feedID,
			"bytes", len(data),
			"cached_feeds", g.cache.Size(),
		)
		return data, nil
	})

	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			return res.Val.([]byte), nil
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	if data, age, ok := g.cache.GetStale(feedID); ok {
		g.metrics.FeedCacheTotal.WithLabelValues(feedID, "stale").Inc()
		g.logger.Warn("feed fetch failed, serving stale copy",
			"feed", feedID,
			"age", age.Round(time.Second).String(),
			"error", err,
		)
		return data, nil
	}

	g.logger.Warn("feed fetch failed", "feed", feedID, "error", err)
	return nil, err
}

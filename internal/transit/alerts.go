package transit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"golang.org/x/sync/singleflight"

	"github.com/randytsao24/meetmta/internal/cache"
	"github.com/randytsao24/meetmta/internal/gtfsrt"
	"github.com/randytsao24/meetmta/internal/metrics"
	"github.com/randytsao24/meetmta/internal/models"
)

// DefaultAlertsTTL is how long parsed alerts are reused
const DefaultAlertsTTL = 60 * time.Second

const (
	alertsCacheKey     = "service-alerts"
	defaultAlertTitle  = "Service Alert"
	defaultAlertDetail = "Check MTA website for details"
)

// AlertProjector fetches the alerts feed and turns it into line-level service alerts
type AlertProjector struct {
	fetcher Fetcher
	cache   *cache.Cache[[]models.ServiceAlert]
	timeout time.Duration
	group   singleflight.Group
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// AlertOptions configures an AlertProjector
type AlertOptions struct {
	TTL     time.Duration
	Timeout time.Duration
	Clock   func() time.Time
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// NewAlertProjector creates an alert projector
func NewAlertProjector(fetcher Fetcher, opts AlertOptions) *AlertProjector {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultAlertsTTL
	}
	p := &AlertProjector{
		fetcher: fetcher,
		timeout: opts.Timeout,
		now:     opts.Clock,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	if p.now == nil {
		p.now = time.Now
	}
	p.cache = cache.New[[]models.ServiceAlert](ttl, cache.WithClock(p.now), cache.WithRetention(0))
	if p.metrics == nil {
		p.metrics = metrics.Discard()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Close releases the cache's background cleanup
func (p *AlertProjector) Close() {
	p.cache.Close()
}

// ServiceAlerts returns current alerts. It never fails: when the feed cannot
// be fetched or decoded it serves the last parsed set, then a built-in set.
func (p *AlertProjector) ServiceAlerts(ctx context.Context) []models.ServiceAlert {
	if alerts, ok := p.cache.Get(alertsCacheKey); ok {
		return alerts
	}

	ch := p.group.DoChan(alertsCacheKey, func() (any, error) {
		return p.refresh(context.WithoutCancel(ctx))
	})

	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			return res.Val.([]models.ServiceAlert)
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	if alerts, age, ok := p.cache.GetStale(alertsCacheKey); ok {
		p.metrics.FallbacksTotal.WithLabelValues("stale_alerts").Inc()
		p.logger.Warn("alerts refresh failed, serving stale alerts",
			"age", age.Round(time.Second).String(),
			"error", err,
		)
		return alerts
	}

	p.metrics.FallbacksTotal.WithLabelValues("mock_alerts").Inc()
	p.logger.Warn("alerts refresh failed, serving built-in alerts", "error", err)
	return MockAlerts(p.now())
}

// AlertsForLines returns the alerts affecting any of lines
func (p *AlertProjector) AlertsForLines(ctx context.Context, lines []string) []models.ServiceAlert {
	all := p.ServiceAlerts(ctx)
	if len(lines) == 0 {
		return all
	}

	var filtered []models.ServiceAlert
	for _, alert := range all {
		if alert.AffectsAny(lines) {
			filtered = append(filtered, alert)
		}
	}
	return filtered
}

func (p *AlertProjector) refresh(ctx context.Context) ([]models.ServiceAlert, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	data, err := p.fetcher.Fetch(ctx, AlertsFeed)
	if err != nil {
		return nil, err
	}

	msg, err := gtfsrt.Decode(data)
	if err != nil {
		var decErr *gtfsrt.DecodeError
		if errors.As(err, &decErr) {
			p.metrics.DecodeErrorsTotal.WithLabelValues(decErr.Stage).Inc()
		}
		return nil, err
	}

	alerts := ParseAlerts(msg)
	p.cache.Set(alertsCacheKey, alerts)
	p.logger.Debug("alerts refreshed", "count", len(alerts))
	return alerts, nil
}

// ParseAlerts converts decoded alert entities into service alerts. Alerts
// that name no route, or carry neither header nor description, are dropped.
func ParseAlerts(msg *gtfsrt.FeedMessage) []models.ServiceAlert {
	alerts := []models.ServiceAlert{}
	for _, entity := range msg.AlertEntities() {
		alert := entity.Alert

		lines := affectedLines(alert.InformedEntities)
		if len(lines) == 0 {
			continue
		}

		title, _ := alert.HeaderText.Text()
		description, _ := alert.DescriptionText.Text()
		hasTitle, hasDescription := title != "", description != ""
		if !hasTitle && !hasDescription {
			continue
		}
		if !hasTitle {
			title = defaultAlertTitle
		}
		if !hasDescription {
			description = defaultAlertDetail
		}

		sa := models.ServiceAlert{
			ID:            entity.ID,
			Title:         title,
			Description:   description,
			AffectedLines: lines,
			Severity:      SeverityForEffect(alert.Effect),
			Cause:         causeName(alert.Cause),
		}
		if len(alert.ActivePeriods) > 0 {
			sa.StartTime = alert.ActivePeriods[0].StartTime()
			sa.EndTime = alert.ActivePeriods[0].EndTime()
		}
		if url, ok := alert.URL.Text(); ok {
			sa.URL = url
		}
		alerts = append(alerts, sa)
	}
	return alerts
}

// SeverityForEffect maps a GTFS-RT alert effect onto a severity
func SeverityForEffect(effect gtfs.Alert_Effect) models.Severity {
	switch effect {
	case gtfs.Alert_NO_SERVICE, gtfs.Alert_SIGNIFICANT_DELAYS:
		return models.SeveritySevere
	case gtfs.Alert_REDUCED_SERVICE, gtfs.Alert_DETOUR, gtfs.Alert_MODIFIED_SERVICE:
		return models.SeverityWarning
	}
	return models.SeverityInfo
}

func affectedLines(selectors []gtfsrt.EntitySelector) []string {
	var lines []string
	seen := make(map[string]bool)
	for _, sel := range selectors {
		if sel.RouteID == "" || seen[sel.RouteID] {
			continue
		}
		seen[sel.RouteID] = true
		lines = append(lines, sel.RouteID)
	}
	return lines
}

func causeName(cause gtfs.Alert_Cause) string {
	if cause == gtfs.Alert_UNKNOWN_CAUSE {
		return ""
	}
	return strings.ToLower(cause.String())
}

// Package usage provides in-memory API usage tracking: a ring buffer of
// request metrics plus per-endpoint and per-tenant counters, exposed over
// admin endpoints.
package usage

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rcm/rcm/internal/platform/auth"
)

// Metric captures a single API request's metadata.
type Metric struct {
	Timestamp  time.Time     `json:"timestamp"`
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	StatusCode int           `json:"status_code"`
	Duration   time.Duration `json:"duration"`
	User       string        `json:"user"`
	TenantID   string        `json:"tenant_id"`
}

type endpointStats struct {
	Path          string
	TotalRequests int64
	TotalErrors   int64
	TotalDuration int64 // nanoseconds
	StatusCounts  map[int]int64
	mu            sync.Mutex
}

type tenantStats struct {
	TenantID      string
	TotalRequests int64
	TotalErrors   int64
	LastRequestAt time.Time
	mu            sync.Mutex
}

// EndpointSummary provides aggregated statistics for a single endpoint.
type EndpointSummary struct {
	Path            string        `json:"path"`
	TotalRequests   int64         `json:"total_requests"`
	ErrorRate       float64       `json:"error_rate"`
	AvgLatency      time.Duration `json:"avg_latency"`
	P95Latency      time.Duration `json:"p95_latency"`
	StatusBreakdown map[int]int64 `json:"status_breakdown"`
}

// TenantSummary provides aggregated statistics for a single tenant.
type TenantSummary struct {
	TenantID      string    `json:"tenant_id"`
	TotalRequests int64     `json:"total_requests"`
	ErrorRate     float64   `json:"error_rate"`
	LastSeen      time.Time `json:"last_seen"`
}

// Overview provides a high-level summary of API usage.
type Overview struct {
	TotalRequests   int64              `json:"total_requests"`
	TotalErrors     int64              `json:"total_errors"`
	ErrorRate       float64            `json:"error_rate"`
	AvgLatency      time.Duration      `json:"avg_latency"`
	UniqueTenants   int                `json:"unique_tenants"`
	UniqueEndpoints int                `json:"unique_endpoints"`
	TopEndpoints    []*EndpointSummary `json:"top_endpoints"`
	TopTenants      []*TenantSummary   `json:"top_tenants"`
}

// TimeSeriesBucket holds aggregated metrics for a single time bucket.
type TimeSeriesBucket struct {
	Timestamp    time.Time     `json:"timestamp"`
	RequestCount int64         `json:"request_count"`
	ErrorCount   int64         `json:"error_count"`
	AvgLatency   time.Duration `json:"avg_latency"`
}

// Tracker is a thread-safe usage aggregator backed by an append-only ring
// buffer with per-endpoint and per-tenant counters.
type Tracker struct {
	metrics          []*Metric
	maxMetrics       int
	writePos         int
	full             bool
	endpointCounters map[string]*endpointStats
	tenantCounters   map[string]*tenantStats
	mu               sync.RWMutex
	totalRequests    int64
	totalErrors      int64
	totalDuration    int64 // nanoseconds
}

// NewTracker creates a Tracker with the given ring buffer capacity.
func NewTracker(maxMetrics int) *Tracker {
	if maxMetrics <= 0 {
		maxMetrics = 100000
	}
	return &Tracker{
		metrics:          make([]*Metric, 0, maxMetrics),
		maxMetrics:       maxMetrics,
		endpointCounters: make(map[string]*endpointStats),
		tenantCounters:   make(map[string]*tenantStats),
	}
}

// Record appends a metric to the ring buffer and updates all counters.
func (t *Tracker) Record(metric *Metric) {
	isError := metric.StatusCode >= 400

	atomic.AddInt64(&t.totalRequests, 1)
	if isError {
		atomic.AddInt64(&t.totalErrors, 1)
	}
	atomic.AddInt64(&t.totalDuration, int64(metric.Duration))

	t.mu.Lock()

	if t.full {
		t.metrics[t.writePos] = metric
	} else if len(t.metrics) < t.maxMetrics {
		t.metrics = append(t.metrics, metric)
	}
	t.writePos++
	if t.writePos >= t.maxMetrics {
		t.writePos = 0
		t.full = true
	}

	ep, ok := t.endpointCounters[metric.Path]
	if !ok {
		ep = &endpointStats{
			Path:         metric.Path,
			StatusCounts: make(map[int]int64),
		}
		t.endpointCounters[metric.Path] = ep
	}

	var ts *tenantStats
	if metric.TenantID != "" {
		ts, ok = t.tenantCounters[metric.TenantID]
		if !ok {
			ts = &tenantStats{TenantID: metric.TenantID}
			t.tenantCounters[metric.TenantID] = ts
		}
	}

	t.mu.Unlock()

	// Per-endpoint mutex keeps contention off the tracker lock.
	ep.mu.Lock()
	ep.TotalRequests++
	if isError {
		ep.TotalErrors++
	}
	ep.TotalDuration += int64(metric.Duration)
	ep.StatusCounts[metric.StatusCode]++
	ep.mu.Unlock()

	if ts != nil {
		ts.mu.Lock()
		ts.TotalRequests++
		if isError {
			ts.TotalErrors++
		}
		ts.LastRequestAt = metric.Timestamp
		ts.mu.Unlock()
	}
}

// GetEndpointStats returns aggregated stats for a single endpoint path.
func (t *Tracker) GetEndpointStats(path string) *EndpointSummary {
	t.mu.RLock()
	ep, ok := t.endpointCounters[path]
	metrics := t.copyMetricsLocked()
	t.mu.RUnlock()
	if !ok {
		return nil
	}
	return buildEndpointSummary(ep, metrics)
}

// GetTenantStats returns aggregated stats for a single tenant.
func (t *Tracker) GetTenantStats(tenantID string) *TenantSummary {
	t.mu.RLock()
	ts, ok := t.tenantCounters[tenantID]
	t.mu.RUnlock()
	if !ok {
		return nil
	}
	return buildTenantSummary(ts)
}

// GetOverview returns a high-level usage summary.
func (t *Tracker) GetOverview() *Overview {
	total := atomic.LoadInt64(&t.totalRequests)
	errors := atomic.LoadInt64(&t.totalErrors)
	dur := atomic.LoadInt64(&t.totalDuration)

	var errorRate float64
	if total > 0 {
		errorRate = float64(errors) / float64(total)
	}
	var avgLatency time.Duration
	if total > 0 {
		avgLatency = time.Duration(dur / total)
	}

	t.mu.RLock()
	uniqueTenants := len(t.tenantCounters)
	uniqueEndpoints := len(t.endpointCounters)
	t.mu.RUnlock()

	return &Overview{
		TotalRequests:   total,
		TotalErrors:     errors,
		ErrorRate:       errorRate,
		AvgLatency:      avgLatency,
		UniqueTenants:   uniqueTenants,
		UniqueEndpoints: uniqueEndpoints,
		TopEndpoints:    t.GetTopEndpoints(5),
		TopTenants:      t.GetTopTenants(5),
	}
}

// GetTopEndpoints returns the top N endpoints by request count descending.
func (t *Tracker) GetTopEndpoints(limit int) []*EndpointSummary {
	// Counters and metrics are snapshotted under a single read lock;
	// summaries are built after release so a blocked writer cannot wedge
	// readers between two lock acquisitions.
	t.mu.RLock()
	endpoints := make([]*endpointStats, 0, len(t.endpointCounters))
	for _, ep := range t.endpointCounters {
		endpoints = append(endpoints, ep)
	}
	metrics := t.copyMetricsLocked()
	t.mu.RUnlock()

	summaries := make([]*EndpointSummary, 0, len(endpoints))
	for _, ep := range endpoints {
		summaries = append(summaries, buildEndpointSummary(ep, metrics))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TotalRequests > summaries[j].TotalRequests
	})
	if limit > len(summaries) {
		limit = len(summaries)
	}
	return summaries[:limit]
}

// GetTopTenants returns the top N tenants by request count descending.
func (t *Tracker) GetTopTenants(limit int) []*TenantSummary {
	t.mu.RLock()
	summaries := make([]*TenantSummary, 0, len(t.tenantCounters))
	for _, ts := range t.tenantCounters {
		summaries = append(summaries, buildTenantSummary(ts))
	}
	t.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TotalRequests > summaries[j].TotalRequests
	})
	if limit > len(summaries) {
		limit = len(summaries)
	}
	return summaries[:limit]
}

// GetTimeSeries returns request counts bucketed by interval over the given
// lookback duration.
func (t *Tracker) GetTimeSeries(interval, duration time.Duration) []*TimeSeriesBucket {
	now := time.Now()
	start := now.Add(-duration).Truncate(interval)
	numBuckets := int(duration/interval) + 1

	buckets := make([]*TimeSeriesBucket, numBuckets)
	for i := 0; i < numBuckets; i++ {
		buckets[i] = &TimeSeriesBucket{
			Timestamp: start.Add(time.Duration(i) * interval),
		}
	}

	t.mu.RLock()
	metricsCopy := t.copyMetricsLocked()
	t.mu.RUnlock()

	for _, m := range metricsCopy {
		if m == nil {
			continue
		}
		if m.Timestamp.Before(start) || m.Timestamp.After(now) {
			continue
		}
		idx := int(m.Timestamp.Sub(start) / interval)
		if idx < 0 || idx >= numBuckets {
			continue
		}
		buckets[idx].RequestCount++
		if m.StatusCode >= 400 {
			buckets[idx].ErrorCount++
		}
		buckets[idx].AvgLatency += m.Duration // accumulate, averaged below
	}

	for _, b := range buckets {
		if b.RequestCount > 0 {
			b.AvgLatency = time.Duration(int64(b.AvgLatency) / b.RequestCount)
		}
	}
	return buckets
}

// copyMetricsLocked snapshots the ring buffer. Callers must hold t.mu.
func (t *Tracker) copyMetricsLocked() []*Metric {
	metrics := make([]*Metric, len(t.metrics))
	copy(metrics, t.metrics)
	return metrics
}

func buildEndpointSummary(ep *endpointStats, metrics []*Metric) *EndpointSummary {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	var errorRate float64
	if ep.TotalRequests > 0 {
		errorRate = float64(ep.TotalErrors) / float64(ep.TotalRequests)
	}
	var avgLatency time.Duration
	if ep.TotalRequests > 0 {
		avgLatency = time.Duration(ep.TotalDuration / ep.TotalRequests)
	}

	statusBreakdown := make(map[int]int64, len(ep.StatusCounts))
	for code, count := range ep.StatusCounts {
		statusBreakdown[code] = count
	}

	return &EndpointSummary{
		Path:            ep.Path,
		TotalRequests:   ep.TotalRequests,
		ErrorRate:       errorRate,
		AvgLatency:      avgLatency,
		P95Latency:      p95Latency(ep.Path, metrics),
		StatusBreakdown: statusBreakdown,
	}
}

func buildTenantSummary(ts *tenantStats) *TenantSummary {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	var errorRate float64
	if ts.TotalRequests > 0 {
		errorRate = float64(ts.TotalErrors) / float64(ts.TotalRequests)
	}
	return &TenantSummary{
		TenantID:      ts.TenantID,
		TotalRequests: ts.TotalRequests,
		ErrorRate:     errorRate,
		LastSeen:      ts.LastRequestAt,
	}
}

func p95Latency(path string, metrics []*Metric) time.Duration {
	var durations []time.Duration
	for _, m := range metrics {
		if m != nil && m.Path == path {
			durations = append(durations, m.Duration)
		}
	}
	if len(durations) == 0 {
		return 0
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	idx := int(float64(len(durations)) * 0.95)
	if idx >= len(durations) {
		idx = len(durations) - 1
	}
	return durations[idx]
}

// Middleware records every request into the provided Tracker. The tenant is
// taken from the tenant_id query or path parameter, matching how the API
// scopes its operations.
func Middleware(tracker *Tracker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			tenantID := c.QueryParam("tenant_id")
			if tenantID == "" {
				tenantID = c.Param("tenant_id")
			}

			tracker.Record(&Metric{
				Timestamp:  start,
				Method:     req.Method,
				Path:       req.URL.Path,
				StatusCode: c.Response().Status,
				Duration:   time.Since(start),
				User:       auth.UserFromContext(req.Context()),
				TenantID:   tenantID,
			})
			return err
		}
	}
}

// Handler exposes usage statistics over HTTP.
type Handler struct {
	tracker *Tracker
}

func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/usage/overview", h.HandleOverview)
	g.GET("/usage/endpoints", h.HandleTopEndpoints)
	g.GET("/usage/tenants", h.HandleTopTenants)
	g.GET("/usage/timeseries", h.HandleTimeSeries)
}

func (h *Handler) HandleOverview(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tracker.GetOverview())
}

func (h *Handler) HandleTopEndpoints(c echo.Context) error {
	limit := intQueryParam(c, "limit", 10)
	return c.JSON(http.StatusOK, h.tracker.GetTopEndpoints(limit))
}

func (h *Handler) HandleTopTenants(c echo.Context) error {
	limit := intQueryParam(c, "limit", 10)
	return c.JSON(http.StatusOK, h.tracker.GetTopTenants(limit))
}

func (h *Handler) HandleTimeSeries(c echo.Context) error {
	interval := durationQueryParam(c, "interval", time.Minute)
	lookback := durationQueryParam(c, "duration", time.Hour)
	return c.JSON(http.StatusOK, h.tracker.GetTimeSeries(interval, lookback))
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func durationQueryParam(c echo.Context, name string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(c.QueryParam(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

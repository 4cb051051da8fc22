package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type monitorStats struct {
	ticks         int
	tickErrors    int
	skipped       int
	targets       int
	opportunities int
	lastLatency   time.Duration
}

type deliveryStats struct {
	sent   int
	failed int
}

// Recorder captures in-memory metrics about upstream calls, monitor ticks and
// outbound deliveries, and forwards them to OpenTelemetry when configured.
type Recorder struct {
	mu         sync.Mutex
	stats      map[string]*providerStats
	jobs       map[string]int
	monitor    monitorStats
	deliveries map[string]*deliveryStats
	otel       *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats:      make(map[string]*providerStats),
		jobs:       make(map[string]int),
		deliveries: make(map[string]*deliveryStats),
		otel:       otel,
	}
}

// RecordProviderAttempt increments counters for an upstream call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that an upstream response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	return r.Snapshot(provider).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for a provider.
func (r *Recorder) LastRetryAfter(provider string) time.Duration {
	return r.Snapshot(provider).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for a provider call.
func (r *Recorder) LastCallLatency(provider string) time.Duration {
	return r.Snapshot(provider).LastCallLatency
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordJobRun tracks a scheduler job execution.
func (r *Recorder) RecordJobRun(job string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.jobs[job]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordJob(job, duration, err)
	}
}

// JobRuns returns how many times a job has executed.
func (r *Recorder) JobRuns(job string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[job]
}

// RecordMonitorTick tracks a completed monitor tick, the number of games in
// the target window and the opportunities found.
func (r *Recorder) RecordMonitorTick(duration time.Duration, targets, opportunities int, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.monitor.ticks++
	r.monitor.targets += targets
	r.monitor.opportunities += opportunities
	r.monitor.lastLatency = duration
	if err != nil {
		r.monitor.tickErrors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordMonitorTick(duration, targets, opportunities, err)
	}
}

// RecordMonitorSkipped tracks a tick dropped because the previous one was still running.
func (r *Recorder) RecordMonitorSkipped() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.monitor.skipped++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCounter(r.otel.monitorSkipped, 1)
	}
}

// MonitorSnapshot summarizes monitor activity.
type MonitorSnapshot struct {
	Ticks         int
	TickErrors    int
	Skipped       int
	Targets       int
	Opportunities int
	LastLatency   time.Duration
}

// Monitor returns a copy of the monitor counters.
func (r *Recorder) Monitor() MonitorSnapshot {
	if r == nil {
		return MonitorSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return MonitorSnapshot{
		Ticks:         r.monitor.ticks,
		TickErrors:    r.monitor.tickErrors,
		Skipped:       r.monitor.skipped,
		Targets:       r.monitor.targets,
		Opportunities: r.monitor.opportunities,
		LastLatency:   r.monitor.lastLatency,
	}
}

// RecordDelivery tracks an outbound notification or broadcast on a channel
// such as "telegram", "websocket" or "redis".
func (r *Recorder) RecordDelivery(channel string, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	stats, ok := r.deliveries[channel]
	if !ok {
		stats = &deliveryStats{}
		r.deliveries[channel] = stats
	}
	if err != nil {
		stats.failed++
	} else {
		stats.sent++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordDelivery(channel, err)
	}
}

// Deliveries returns sent and failed counts for a channel.
func (r *Recorder) Deliveries(channel string) (sent, failed int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stats, ok := r.deliveries[channel]; ok {
		return stats.sent, stats.failed
	}
	return 0, 0
}

func (r *Recorder) ensureStatsLocked(provider string) *providerStats {
	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	return stats
}

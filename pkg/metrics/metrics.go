// Package metrics keeps in-process request and domain counters and exposes
// them through expvar and a compact JSON snapshot.
package metrics

import (
	"encoding/json"
	"expvar"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// Local diagnostics endpoints, served on the stats listener.
	StatsPath     = "/stats"
	DebugVarsPath = "/debug/vars"
)

// Domain events counted alongside HTTP traffic.
const (
	EventContactSubmitted    = "contact_submitted"
	EventMembershipSubmitted = "membership_submitted"
	EventEditionActivated    = "edition_activated"
	EventEditionDuplicated   = "edition_duplicated"
	EventReordered           = "reordered"
	EventAssetUploaded       = "asset_uploaded"
	EventLoginFailed         = "login_failed"
	EventBackupWritten       = "backup_written"
	EventBackupFailed        = "backup_failed"
)

var (
	std      = New(time.Now)
	initOnce sync.Once
)

// Init publishes the default recorder as expvar variables. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		expvar.Publish("ts_started_at", expvar.Func(func() any {
			return std.startedAt.Format(time.RFC3339)
		}))
		expvar.Publish("ts_uptime_seconds", expvar.Func(func() any {
			return int64(std.now().Sub(std.startedAt).Seconds())
		}))
		expvar.Publish("ts_total_requests", expvar.Func(func() any {
			return std.Snapshot().TotalRequests
		}))
		expvar.Publish("ts_total_errors", expvar.Func(func() any {
			return std.Snapshot().TotalErrors
		}))
		expvar.Publish("ts_requests_by_method_status", expvar.Func(func() any {
			return std.Snapshot().RequestsByMethodAndStatus
		}))
		expvar.Publish("ts_request_duration_ms_buckets", expvar.Func(func() any {
			std.mu.Lock()
			defer std.mu.Unlock()
			return copyNested(std.durationBuckets)
		}))
		expvar.Publish("ts_requests_last_10m", expvar.Func(func() any {
			return std.Snapshot().RequestsPerMinuteLast10m
		}))
		expvar.Publish("ts_events", expvar.Func(func() any {
			return std.Snapshot().Events
		}))
	})
}

// Instrument records traffic on the default recorder.
func Instrument(next http.Handler) http.Handler { return std.Instrument(next) }

// StatsHandler serves the default recorder snapshot.
func StatsHandler(w http.ResponseWriter, r *http.Request) { std.ServeHTTP(w, r) }

// Record counts one domain event on the default recorder.
func Record(event string) { std.Record(event) }

// Recorder aggregates request counts, latency buckets, a requests-per-minute
// ring, active visitors and domain events.
type Recorder struct {
	mu  sync.Mutex
	now func() time.Time

	startedAt time.Time

	totalReq     int64
	totalErr     int64
	totalLatency time.Duration

	// method -> statusCode -> count
	byMethodStatus map[string]map[string]int64
	// method -> bucketLabel -> count
	durationBuckets map[string]map[string]int64

	// Newest minute is perMinute[0], oldest is perMinute[9]
	perMinute  [10]int64
	lastMinute time.Time

	// visitor key -> last seen time
	active map[string]time.Time

	events map[string]int64
}

func New(now func() time.Time) *Recorder {
	return &Recorder{
		now:             now,
		startedAt:       now(),
		byMethodStatus:  make(map[string]map[string]int64),
		durationBuckets: make(map[string]map[string]int64),
		active:          make(map[string]time.Time),
		events:          make(map[string]int64),
	}
}

type Stats struct {
	StartedAt                 string                      `json:"started_at"`
	UptimeSeconds             int64                       `json:"uptime_seconds"`
	TotalRequests             int64                       `json:"total_requests"`
	TotalErrors               int64                       `json:"total_errors"`
	AverageLatencyMs          float64                     `json:"avg_latency_ms"`
	RequestsPerMinuteLast10m  []int64                     `json:"requests_last_10m_newest_first"`
	ActiveVisitors5m          int64                       `json:"active_visitors_5m"`
	RequestsByMethodAndStatus map[string]map[string]int64 `json:"requests_by_method_status"`
	Events                    map[string]int64            `json:"events"`
}

// Instrument wraps an http.Handler to record request count, status codes,
// latency buckets, requests-per-minute and active visitors (5m window).
func (s *Recorder) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		start := s.now()
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		s.record(r, sw.status, s.now().Sub(start))
	})
}

func (s *Recorder) Record(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event]++
}

// Snapshot copies the current counters.
func (s *Recorder) Snapshot() Stats {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	avgLatencyMs := float64(0)
	if s.totalReq > 0 {
		avgLatencyMs = float64(s.totalLatency.Milliseconds()) / float64(s.totalReq)
	}
	rpm := make([]int64, len(s.perMinute))
	copy(rpm, s.perMinute[:])
	events := make(map[string]int64, len(s.events))
	for k, v := range s.events {
		events[k] = v
	}
	return Stats{
		StartedAt:                 s.startedAt.Format(time.RFC3339),
		UptimeSeconds:             int64(now.Sub(s.startedAt).Seconds()),
		TotalRequests:             s.totalReq,
		TotalErrors:               s.totalErr,
		AverageLatencyMs:          avgLatencyMs,
		RequestsPerMinuteLast10m:  rpm,
		ActiveVisitors5m:          int64(len(s.active)),
		RequestsByMethodAndStatus: copyNested(s.byMethodStatus),
		Events:                    events,
	}
}

// ServeHTTP writes the snapshot as JSON.
func (s *Recorder) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Snapshot())
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (s *Recorder) record(r *http.Request, statusCode int, d time.Duration) {
	now := s.now()
	method := r.Method
	if method == "" {
		method = "UNKNOWN"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalReq++
	if statusCode >= 400 {
		s.totalErr++
	}
	s.totalLatency += d

	increment(s.byMethodStatus, method, strconv.Itoa(statusCode))
	increment(s.durationBuckets, method, bucketLabel(d))

	currMinute := now.Truncate(time.Minute)
	if s.lastMinute.IsZero() {
		s.lastMinute = currMinute
	}
	if delta := int(currMinute.Sub(s.lastMinute) / time.Minute); delta > 0 {
		if delta >= len(s.perMinute) {
			clear(s.perMinute[:])
		} else {
			copy(s.perMinute[delta:], s.perMinute[:len(s.perMinute)-delta])
			clear(s.perMinute[:delta])
		}
		s.lastMinute = currMinute
	}
	s.perMinute[0]++

	s.active[visitorKey(r)] = now
	s.pruneLocked(now)
}

func (s *Recorder) pruneLocked(now time.Time) {
	cutoff := now.Add(-5 * time.Minute)
	for k, t := range s.active {
		if t.Before(cutoff) {
			delete(s.active, k)
		}
	}
}

func increment(m map[string]map[string]int64, outer, inner string) {
	if _, ok := m[outer]; !ok {
		m[outer] = make(map[string]int64)
	}
	m[outer][inner]++
}

func copyNested(in map[string]map[string]int64) map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(in))
	for k, inner := range in {
		o2 := make(map[string]int64, len(inner))
		for k2, c := range inner {
			o2[k2] = c
		}
		out[k] = o2
	}
	return out
}

var bucketBounds = []time.Duration{
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
	1000 * time.Millisecond,
	2500 * time.Millisecond,
	5000 * time.Millisecond,
}

func bucketLabel(d time.Duration) string {
	for _, b := range bucketBounds {
		if d <= b {
			return "le_" + strconv.FormatInt(b.Milliseconds(), 10) + "ms"
		}
	}
	return "gt_5000ms"
}

func visitorKey(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			xff = xff[:idx]
		}
		if xff = strings.TrimSpace(xff); xff != "" {
			return "ip:" + xff
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "ip:" + r.RemoteAddr
}

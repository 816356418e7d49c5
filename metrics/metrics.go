package metrics

import (
	"sync/atomic"
	"time"
)

// Recorder records admission outcomes.
type Recorder interface {
	RecordRequest(allowed bool)
}

// Metrics tracks admission statistics in-process.
type Metrics struct {
	totalRequests   atomic.Int64
	allowedRequests atomic.Int64
	deniedRequests  atomic.Int64
	startTime       time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordRequest records the outcome of one admission check.
func (m *Metrics) RecordRequest(allowed bool) {
	m.totalRequests.Add(1)

	if allowed {
		m.allowedRequests.Add(1)
	} else {
		m.deniedRequests.Add(1)
	}
}

// GetSnapshot returns a point-in-time view of the counters.
func (m *Metrics) GetSnapshot() *Snapshot {
	uptime := time.Since(m.startTime)

	return &Snapshot{
		TotalRequests:   m.totalRequests.Load(),
		AllowedRequests: m.allowedRequests.Load(),
		DeniedRequests:  m.deniedRequests.Load(),
		UptimeSeconds:   int64(uptime.Seconds()),
		StartTime:       m.startTime,
	}
}

// Snapshot represents a point-in-time view of metrics.
type Snapshot struct {
	TotalRequests   int64     `json:"total_requests"`
	AllowedRequests int64     `json:"allowed_requests"`
	DeniedRequests  int64     `json:"denied_requests"`
	UptimeSeconds   int64     `json:"uptime_seconds"`
	StartTime       time.Time `json:"start_time"`
}

// Multi returns a Recorder that fans out to every given recorder.
// Nil entries are skipped.
func Multi(recorders ...Recorder) Recorder {
	out := make(multiRecorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type multiRecorder []Recorder

func (m multiRecorder) RecordRequest(allowed bool) {
	for _, r := range m {
		r.RecordRequest(allowed)
	}
}

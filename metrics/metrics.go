// Package metrics tracks admission control statistics.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics counts admission checks and config updates. All methods are safe
// for concurrent use.
type Metrics struct {
	totalChecks   atomic.Int64
	allowed       atomic.Int64
	denied        atomic.Int64
	configUpdates atomic.Int64
	startTime     time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordAdmission records the outcome of one admission check.
func (m *Metrics) RecordAdmission(allowed bool) {
	m.totalChecks.Add(1)
	if allowed {
		m.allowed.Add(1)
	} else {
		m.denied.Add(1)
	}
}

// RecordConfigUpdate records one successfully applied configuration update.
func (m *Metrics) RecordConfigUpdate() {
	m.configUpdates.Add(1)
}

// GetSnapshot returns a point-in-time view of the counters.
func (m *Metrics) GetSnapshot() *Snapshot {
	return &Snapshot{
		TotalChecks:   m.totalChecks.Load(),
		Allowed:       m.allowed.Load(),
		Denied:        m.denied.Load(),
		ConfigUpdates: m.configUpdates.Load(),
		UptimeSeconds: int64(time.Since(m.startTime).Seconds()),
		StartTime:     m.startTime,
	}
}

// Snapshot represents a point-in-time view of metrics
type Snapshot struct {
	TotalChecks   int64     `json:"total_checks"`
	Allowed       int64     `json:"allowed"`
	Denied        int64     `json:"denied"`
	ConfigUpdates int64     `json:"config_updates"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
}

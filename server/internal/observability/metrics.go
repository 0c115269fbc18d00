package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects counters for the conflict engine.
type Metrics struct {
	mu sync.Mutex

	classifications atomic.Int64
	oracleHits      atomic.Int64
	oracleMisses    atomic.Int64
	oracleFailures  atomic.Int64

	// verdicts is keyed by the verdict's string form.
	verdicts map[string]*atomic.Int64

	durations    []time.Duration
	maxDurations int

	sink atomic.Pointer[PromSink]
}

// NewMetrics creates a new metrics collector.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		verdicts:     make(map[string]*atomic.Int64),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

var globalMetrics = NewMetrics(1000)

// GlobalMetrics returns the global metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// AttachPrometheus mirrors every later recording into sink.
func (m *Metrics) AttachPrometheus(sink *PromSink) {
	m.sink.Store(sink)
}

// RecordClassification records one finished classification and its duration.
func (m *Metrics) RecordClassification(verdict string, duration time.Duration) {
	m.classifications.Add(1)
	if sink := m.sink.Load(); sink != nil {
		sink.recordClassification(verdict, duration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.verdicts[verdict]
	if !ok {
		c = &atomic.Int64{}
		m.verdicts[verdict] = c
	}
	c.Add(1)

	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
}

// RecordOracleHit records a travel-time answer served from cache.
func (m *Metrics) RecordOracleHit() {
	m.oracleHits.Add(1)
	if sink := m.sink.Load(); sink != nil {
		sink.recordOracle("hit")
	}
}

// RecordOracleMiss records a travel-time lookup that went to the source.
func (m *Metrics) RecordOracleMiss() {
	m.oracleMisses.Add(1)
	if sink := m.sink.Load(); sink != nil {
		sink.recordOracle("miss")
	}
}

// RecordOracleFailure records a travel-time lookup that produced no answer.
func (m *Metrics) RecordOracleFailure() {
	m.oracleFailures.Add(1)
	if sink := m.sink.Load(); sink != nil {
		sink.recordOracle("failure")
	}
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.classifications.Store(0)
	m.oracleHits.Store(0)
	m.oracleMisses.Store(0)
	m.oracleFailures.Store(0)

	m.mu.Lock()
	m.verdicts = make(map[string]*atomic.Int64)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	verdicts := make(map[string]int64, len(m.verdicts))
	for k, v := range m.verdicts {
		verdicts[k] = v.Load()
	}

	var avg int64
	if n := len(m.durations); n > 0 {
		var total time.Duration
		for _, d := range m.durations {
			total += d
		}
		avg = (total / time.Duration(n)).Microseconds()
	}

	return &MetricsSnapshot{
		Classifications: m.classifications.Load(),
		Verdicts:        verdicts,
		OracleHits:      m.oracleHits.Load(),
		OracleMisses:    m.oracleMisses.Load(),
		OracleFailures:  m.oracleFailures.Load(),
		AvgDurationUs:   avg,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	Classifications int64            `json:"classifications"`
	Verdicts        map[string]int64 `json:"verdicts"`
	OracleHits      int64            `json:"oracle_hits"`
	OracleMisses    int64            `json:"oracle_misses"`
	OracleFailures  int64            `json:"oracle_failures"`
	AvgDurationUs   int64            `json:"avg_duration_us"`
}

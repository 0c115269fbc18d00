package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromSink mirrors engine metrics into Prometheus collectors.
type PromSink struct {
	classifications *prometheus.CounterVec
	latency         prometheus.Histogram
	oracleLookups   *prometheus.CounterVec
}

// NewPromSink registers engine metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	classifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduleterp_classifications_total",
		Help: "Total number of classified meetings by verdict",
	}, []string{"verdict"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduleterp_classification_duration_seconds",
		Help:    "Time spent classifying one meeting",
		Buckets: prometheus.DefBuckets,
	})
	oracleLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduleterp_travel_time_lookups_total",
		Help: "Travel-time lookups by result",
	}, []string{"result"})

	var err error
	if classifications, err = register(reg, classifications); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if oracleLookups, err = register(reg, oracleLookups); err != nil {
		return nil, err
	}

	return &PromSink{
		classifications: classifications,
		latency:         latency,
		oracleLookups:   oracleLookups,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (s *PromSink) recordClassification(verdict string, d time.Duration) {
	s.classifications.WithLabelValues(verdict).Inc()
	s.latency.Observe(d.Seconds())
}

func (s *PromSink) recordOracle(result string) {
	s.oracleLookups.WithLabelValues(result).Inc()
}

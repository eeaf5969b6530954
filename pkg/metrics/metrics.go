// Package metrics exports Prometheus metrics for report writes and removals.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reportstore"

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide metrics registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Registry holds all reportstore metrics. A nil *Registry records nothing.
type Registry struct {
	reg *prometheus.Registry

	reportsWritten  *prometheus.CounterVec
	reportBytes     prometheus.Histogram
	writeDuration   prometheus.Histogram
	hostsDestroyed  *prometheus.CounterVec
	lastWriteUnixTS prometheus.Gauge
}

// NewRegistry creates a registry with every collector registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		reportsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_written_total",
			Help:      "Reports handed to the store, by result.",
		}, []string{"result"}),
		reportBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_bytes",
			Help:      "Size of serialized reports.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		writeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_duration_seconds",
			Help:      "Time spent serializing and writing one report.",
			Buckets:   prometheus.DefBuckets,
		}),
		hostsDestroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hosts_destroyed_total",
			Help:      "Host report directories removed, by result.",
		}, []string{"result"}),
		lastWriteUnixTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_write_timestamp_seconds",
			Help:      "Unix time of the last report written successfully.",
		}),
	}
	r.reg.MustRegister(r.reportsWritten, r.reportBytes, r.writeDuration, r.hostsDestroyed, r.lastWriteUnixTS)
	return r
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordWrite records one Process call.
func (r *Registry) RecordWrite(success bool, duration time.Duration, sizeBytes int) {
	if r == nil {
		return
	}
	r.reportsWritten.WithLabelValues(result(success)).Inc()
	r.writeDuration.Observe(duration.Seconds())
	if success {
		r.reportBytes.Observe(float64(sizeBytes))
		r.lastWriteUnixTS.SetToCurrentTime()
	}
}

// RecordDestroy records one Destroy call.
func (r *Registry) RecordDestroy(success bool) {
	if r == nil {
		return
	}
	r.hostsDestroyed.WithLabelValues(result(success)).Inc()
}

// Gatherer exposes the underlying registry, e.g. for promhttp or tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes all metrics in the node_exporter textfile format.
// The file is replaced atomically by the Prometheus client.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

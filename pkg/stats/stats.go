// Package stats provides the orchestrator's StatsRegistry: typed,
// thread-safe counters and gauges backed by prometheus/client_golang,
// generalized from the teacher's pkg/metrics package.
package stats

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every counter and gauge the orchestrator updates
// while driving a SegmentBuildJob through its phases.
type Registry struct {
	WriteSuccess   prometheus.Counter
	WriteFailure   prometheus.Counter
	WriteDuration  prometheus.Histogram

	SubmitSuccess  prometheus.Counter
	SubmitFailure  prometheus.Counter
	SubmitDuration prometheus.Histogram

	WaitDuration prometheus.Histogram

	ReadSuccess   prometheus.Counter
	ReadFailure   prometheus.Counter
	ReadDuration  prometheus.Histogram

	IndexBuildSuccess prometheus.Counter
	IndexBuildFailure prometheus.Counter

	CurrentFlushOps  prometheus.Gauge
	CurrentMergeOps  prometheus.Gauge
	CurrentFlushSize prometheus.Gauge
	CurrentMergeSize prometheus.Gauge

	CumulativeFlushTime prometheus.Counter
	CumulativeMergeTime prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers every vecbuild metric under a fresh
// prometheus.Registry, the way the teacher's metrics.New does.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	durationBuckets := []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300}

	r := &Registry{
		WriteSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecbuild_write_success_total", Help: "Successful vector/doc-id blob uploads.",
		}),
		WriteFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecbuild_write_failure_total", Help: "Failed vector/doc-id blob uploads.",
		}),
		WriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "vecbuild_write_duration_seconds", Help: "Upload phase duration.", Buckets: durationBuckets,
		}),
		SubmitSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecbuild_submit_success_total", Help: "Successful build submissions.",
		}),
		SubmitFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecbuild_submit_failure_total", Help: "Failed build submissions.",
		}),
		SubmitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "vecbuild_submit_duration_seconds", Help: "Submit phase duration.", Buckets: durationBuckets,
		}),
		WaitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "vecbuild_wait_duration_seconds", Help: "Time spent polling for build completion.", Buckets: durationBuckets,
		}),
		ReadSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecbuild_read_success_total", Help: "Successful artifact downloads.",
		}),
		ReadFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecbuild_read_failure_total", Help: "Failed artifact downloads.",
		}),
		ReadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "vecbuild_read_duration_seconds", Help: "Download phase duration.", Buckets: durationBuckets,
		}),
		IndexBuildSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecbuild_index_build_success_total", Help: "Jobs that completed via the remote path end to end.",
		}),
		IndexBuildFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecbuild_index_build_failure_total", Help: "Jobs that fell back to the local builder.",
		}),
		CurrentFlushOps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vecbuild_current_flush_ops", Help: "In-flight build jobs attributed to flush.",
		}),
		CurrentMergeOps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vecbuild_current_merge_ops", Help: "In-flight build jobs attributed to merge.",
		}),
		CurrentFlushSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vecbuild_current_flush_bytes", Help: "Vector bytes in flight for flush-attributed jobs.",
		}),
		CurrentMergeSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vecbuild_current_merge_bytes", Help: "Vector bytes in flight for merge-attributed jobs.",
		}),
		CumulativeFlushTime: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecbuild_cumulative_flush_seconds_total", Help: "Cumulative wall time spent on flush-attributed jobs.",
		}),
		CumulativeMergeTime: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecbuild_cumulative_merge_seconds_total", Help: "Cumulative wall time spent on merge-attributed jobs.",
		}),
		registry: reg,
	}

	reg.MustRegister(
		r.WriteSuccess, r.WriteFailure, r.WriteDuration,
		r.SubmitSuccess, r.SubmitFailure, r.SubmitDuration,
		r.WaitDuration,
		r.ReadSuccess, r.ReadFailure, r.ReadDuration,
		r.IndexBuildSuccess, r.IndexBuildFailure,
		r.CurrentFlushOps, r.CurrentMergeOps,
		r.CurrentFlushSize, r.CurrentMergeSize,
		r.CumulativeFlushTime, r.CumulativeMergeTime,
	)

	return r
}

// Handler returns an http.Handler serving /metrics in the Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveDuration is a small helper mirroring the teacher's
// RecordRequest timing pattern: record elapsed time against h.
func ObserveDuration(h prometheus.Histogram, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

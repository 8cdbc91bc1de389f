// Package metrics collects batch run counters in a private prometheus
// registry and writes them out for the node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nif-optimizer/internal/spell"
)

const namespace = "niftoaster"

// Recorder holds the metrics of one process.
type Recorder struct {
	reg      *prometheus.Registry
	files    *prometheus.CounterVec
	toast    *prometheus.CounterVec
	duration prometheus.Histogram
}

// New returns a recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		files: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Scene files processed, by status.",
		}, []string{"status"}),
		toast: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Spell counters summed over all files (branches merged, references cleaned, vertices before and after).",
		}, []string{"counter"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Time spent on one scene file.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// File records one processed file.
func (r *Recorder) File(status string, d time.Duration) {
	r.files.WithLabelValues(status).Inc()
	r.duration.Observe(d.Seconds())
}

// Toast adds the counters of a finished toast.
func (r *Recorder) Toast(t *spell.Toast) {
	for _, name := range t.StatNames() {
		r.toast.WithLabelValues(name).Add(float64(t.Stat(name)))
	}
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, r.reg), "metrics: write %s", path)
}

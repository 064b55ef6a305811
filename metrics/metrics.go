// Package metrics exposes prometheus collectors describing pipeline assembly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "trainkit"

// Recorder counts what the assembler builds. A nil *Recorder records nothing.
type Recorder struct {
	built    *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration prometheus.Histogram
	split    *prometheus.GaugeVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		built: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "components_built_total",
			Help:      "Components instantiated from a registry, by registry and name.",
		}, []string{"registry", "name"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assembly_failures_total",
			Help:      "Pipeline assemblies aborted, by failing stage.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assembly_duration_seconds",
			Help:      "Wall time of successful pipeline assemblies.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		split: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "split_size",
			Help:      "Number of samples in each dataset split of the last assembly.",
		}, []string{"split"}),
	}
	reg.MustRegister(r.built, r.failures, r.duration, r.split)
	return r
}

// ComponentBuilt counts one instantiation.
func (r *Recorder) ComponentBuilt(registry, name string) {
	if r == nil {
		return
	}
	r.built.WithLabelValues(registry, name).Inc()
}

// AssemblyFailed counts an aborted assembly.
func (r *Recorder) AssemblyFailed(stage string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(stage).Inc()
}

// AssemblyDone observes the duration of a finished assembly.
func (r *Recorder) AssemblyDone(d time.Duration) {
	if r == nil {
		return
	}
	r.duration.Observe(d.Seconds())
}

// SplitSizes records the sample counts of the three splits.
func (r *Recorder) SplitSizes(train, validation, test int) {
	if r == nil {
		return
	}
	r.split.WithLabelValues("train").Set(float64(train))
	r.split.WithLabelValues("validation").Set(float64(validation))
	r.split.WithLabelValues("test").Set(float64(test))
}

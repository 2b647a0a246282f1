// Package metrics provides the observability seam used by task generation and
// estimator runs. Callers depend on the Metrics interface; the worker wires a
// Prometheus-backed implementation and tests use NoOp or Recorder.
package metrics

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names emitted by the benchmark pipeline.
const (
	TasksGenerated         = "mibench.tasks.generated"
	SamplesDrawn           = "mibench.samples.drawn"
	GenerationDuration     = "mibench.generation.duration_seconds"
	EstimatorRuns          = "mibench.estimator.runs"
	EstimatorDuration      = "mibench.estimator.duration_seconds"
	EstimatorAbsoluteError = "mibench.estimator.absolute_error"
)

// Metrics provides observability data collection.
// Supports counters, histograms, and gauges with tag-based dimensionality.
type Metrics interface {
	IncrementCounter(name string, tags map[string]string, value float64)
	RecordHistogram(name string, tags map[string]string, value float64)
	SetGauge(name string, tags map[string]string, value float64)
}

// NoOp discards all measurements.
type NoOp struct{}

// NewNoOp creates a no-op metrics collector.
func NewNoOp() *NoOp { return &NoOp{} }

func (NoOp) IncrementCounter(_ string, _ map[string]string, _ float64) {}

func (NoOp) RecordHistogram(_ string, _ map[string]string, _ float64) {}

func (NoOp) SetGauge(_ string, _ map[string]string, _ float64) {}

// Prometheus adapts Metrics onto client_golang collectors. Collectors are
// created on first use and keyed by metric name; the label set of a name is
// fixed by its first observation.
type Prometheus struct {
	namespace  string
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
	labels     map[string][]string
}

// NewPrometheus creates a collector registering into reg.
// A nil registerer uses prometheus.DefaultRegisterer.
func NewPrometheus(namespace string, reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Prometheus{
		namespace:  namespace,
		registerer: reg,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		labels:     make(map[string][]string),
	}
}

// IncrementCounter adds value to the named counter.
func (p *Prometheus) IncrementCounter(name string, tags map[string]string, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, ok := p.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      p.metricName(name),
			Help:      fmt.Sprintf("Counter %s.", name),
		}, p.labelNames(name, tags))
		vec = registerOrExisting(p.registerer, vec)
		p.counters[name] = vec
	}
	if c, err := vec.GetMetricWith(p.labelValues(name, tags)); err == nil {
		c.Add(value)
	}
}

// RecordHistogram observes value in the named histogram.
func (p *Prometheus) RecordHistogram(name string, tags map[string]string, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, ok := p.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      p.metricName(name),
			Help:      fmt.Sprintf("Histogram %s.", name),
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
		}, p.labelNames(name, tags))
		vec = registerOrExisting(p.registerer, vec)
		p.histograms[name] = vec
	}
	if h, err := vec.GetMetricWith(p.labelValues(name, tags)); err == nil {
		h.Observe(value)
	}
}

// SetGauge sets the named gauge.
func (p *Prometheus) SetGauge(name string, tags map[string]string, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, ok := p.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      p.metricName(name),
			Help:      fmt.Sprintf("Gauge %s.", name),
		}, p.labelNames(name, tags))
		vec = registerOrExisting(p.registerer, vec)
		p.gauges[name] = vec
	}
	if g, err := vec.GetMetricWith(p.labelValues(name, tags)); err == nil {
		g.Set(value)
	}
}

// labelNames fixes and returns the sorted label names of a metric.
func (p *Prometheus) labelNames(name string, tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, sanitize(k))
	}
	slices.Sort(keys)
	p.labels[name] = keys
	return keys
}

// labelValues maps tags onto the label set fixed for name. Missing tags
// become empty values and unknown tags are dropped.
func (p *Prometheus) labelValues(name string, tags map[string]string) prometheus.Labels {
	labels := make(prometheus.Labels, len(p.labels[name]))
	for _, k := range p.labels[name] {
		labels[k] = ""
	}
	for k, v := range tags {
		if _, ok := labels[sanitize(k)]; ok {
			labels[sanitize(k)] = v
		}
	}
	return labels
}

// registerOrExisting registers c, returning the collector already registered
// under the same descriptor when there is one.
func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// metricName drops a leading "<namespace>." so the namespace is not repeated.
func (p *Prometheus) metricName(name string) string {
	if p.namespace != "" {
		name = strings.TrimPrefix(name, p.namespace+".")
	}
	return sanitize(name)
}

// sanitize turns dotted metric names into valid Prometheus identifiers.
func sanitize(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_").Replace(name)
}

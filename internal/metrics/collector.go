package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agbru/grovertally/internal/tally"
)

// Outcome label values for grovertally_trials_total.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector owns the metrics of one run.
type Collector struct {
	registry *prometheus.Registry

	trials   *prometheus.CounterVec
	duration prometheus.Histogram
	outputs  *prometheus.GaugeVec
	distinct prometheus.Gauge
}

// NewCollector creates a Collector with its own registry. Runtime memory
// readings from MemoryCollector are exported alongside the trial metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grovertally_trials_total",
			Help: "Number of trials by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grovertally_trial_duration_seconds",
			Help:    "Wall time of a single trial.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		outputs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "grovertally_output_count",
			Help: "Number of trials that returned each output in the last completed batch.",
		}, []string{"output"}),
		distinct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grovertally_distinct_outputs",
			Help: "Number of distinct outputs in the last completed batch.",
		}),
	}

	mem := NewMemoryCollector()
	heap := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "grovertally_heap_alloc_bytes",
		Help: "Bytes of allocated heap objects.",
	}, func() float64 { return float64(mem.Snapshot().HeapAlloc) })

	c.registry.MustRegister(c.trials, c.duration, c.outputs, c.distinct, heap)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveTrial records the outcome and duration of one trial.
func (c *Collector) ObserveTrial(_ int, _ int64, d time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	c.trials.WithLabelValues(outcome).Inc()
	c.duration.Observe(d.Seconds())
}

// RecordEntries replaces the per-output gauges with a batch's table.
func (c *Collector) RecordEntries(entries []tally.Entry) {
	c.outputs.Reset()
	for _, e := range entries {
		c.outputs.WithLabelValues(strconv.FormatInt(e.Output, 10)).Set(float64(e.Count))
	}
	c.distinct.Set(float64(len(entries)))
}

// WriteTextfile writes every metric to path. The file is written atomically
// so a node-exporter scrape never sees a partial file.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// Package metrics records per-trial Prometheus metrics for a run and writes
// them in the node-exporter textfile format. No HTTP listener is started; the
// registry is private to each Collector.
package metrics

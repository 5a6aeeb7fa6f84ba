// Package metric provides Prometheus metrics for respkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, command and connection metrics
//   - collector.go: keyspace collector reading store statistics on scrape
//
// Metrics include:
//
//   - Per-command call counters and latency histograms
//   - Error counters by command and error kind
//   - Connected, accepted and rejected client counts
//   - Keyspace size, volatile keys and expired keys
//
// Metrics are exposed at /metrics in Prometheus format.
package metric

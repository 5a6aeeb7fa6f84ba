package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/respkv/internal/storage/memory"
)

// StatsSource provides keyspace statistics.
type StatsSource interface {
	Stats() memory.Stats
}

// Collector reports keyspace statistics at scrape time.
type Collector struct {
	source StatsSource

	keys     *prometheus.Desc
	volatile *prometheus.Desc
	expired  *prometheus.Desc
}

// NewCollector creates a keyspace collector over source.
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source: source,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "keys"),
			"Number of live keys", nil, nil),
		volatile: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "volatile_keys"),
			"Number of live keys with an expiry", nil, nil),
		expired: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "expired_keys_total"),
			"Keys removed because their expiry passed", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.volatile
	ch <- c.expired
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(st.Keys))
	ch <- prometheus.MustNewConstMetric(c.volatile, prometheus.GaugeValue, float64(st.Volatile))
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.CounterValue, float64(st.Expired))
}

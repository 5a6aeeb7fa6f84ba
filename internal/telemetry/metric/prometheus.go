package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "respkv"

// Registry holds all application metrics. It implements the command
// observer and the connection observer of the RESP server.
type Registry struct {
	registry *prometheus.Registry

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandErrors   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Connection metrics
	ClientsConnected    prometheus.Gauge
	ConnectionsTotal    prometheus.Counter
	ConnectionsRejected *prometheus.CounterVec
}

// NewRegistry creates a registry with Go runtime and process collectors
// already registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed, by command name",
		}, []string{"cmd"}),
		CommandErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "Commands that returned an error reply, by command and error kind",
		}, []string{"cmd", "kind"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution latency",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"cmd"}),
		ClientsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Currently open client connections",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_received_total",
			Help:      "Client connections accepted",
		}),
		ConnectionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Client connections refused or closed by the server, by reason",
		}, []string{"reason"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.CommandsTotal,
		r.CommandErrors,
		r.CommandDuration,
		r.ClientsConnected,
		r.ConnectionsTotal,
		r.ConnectionsRejected,
	)
	return r
}

// RegisterKeyspace adds the keyspace collector for source.
func (r *Registry) RegisterKeyspace(source StatsSource) error {
	return r.registry.Register(NewCollector(source))
}

// Observe records one dispatched command.
func (r *Registry) Observe(name, errKind string, d time.Duration) {
	r.CommandsTotal.WithLabelValues(name).Inc()
	r.CommandDuration.WithLabelValues(name).Observe(d.Seconds())
	if errKind != "" {
		r.CommandErrors.WithLabelValues(name, errKind).Inc()
	}
}

// ConnOpened records an accepted connection.
func (r *Registry) ConnOpened() {
	r.ConnectionsTotal.Inc()
	r.ClientsConnected.Inc()
}

// ConnClosed records a connection that went away.
func (r *Registry) ConnClosed() {
	r.ClientsConnected.Dec()
}

// ConnRejected records a connection closed by the server for reason.
func (r *Registry) ConnRejected(reason string) {
	r.ConnectionsRejected.WithLabelValues(reason).Inc()
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Package metrics exposes the query manager's Prometheus metrics, grounded
// on db-bouncer/internal/metrics.Collector: a custom registry, one field per
// concern, small update methods called from the connection engine, worker
// pool, statement cache and main's queue-depth reporter rather than
// scattering prometheus calls
// through business logic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the server updates.
type Collector struct {
	Registry *prometheus.Registry

	queueDepth     prometheus.Gauge
	queueCapacity  prometheus.Gauge
	workersBusy    prometheus.Gauge
	workersTotal   prometheus.Gauge
	queriesHandled *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	retryAttempts  prometheus.Counter
	retryExhausted prometheus.Counter

	stmtCacheHits    prometheus.Counter
	stmtCacheMisses  prometheus.Counter
	stmtCacheEvicted prometheus.Counter

	connectionsActive  prometheus.Gauge
	connectionsIdle    prometheus.Gauge
	connectionsAccepted prometheus.Counter
	connectionsRejected prometheus.Counter
	loopbackRejected   prometheus.Counter
}

// New builds a Collector on a fresh registry and registers every metric.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		Registry: reg,

		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "querymanager", Subsystem: "queue", Name: "depth",
			Help: "Number of queries currently waiting in the work queue.",
		}),
		queueCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "querymanager", Subsystem: "queue", Name: "capacity",
			Help: "Configured maximum size of the work queue.",
		}),
		workersBusy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "querymanager", Subsystem: "worker", Name: "busy",
			Help: "Number of worker goroutines currently executing a query.",
		}),
		workersTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "querymanager", Subsystem: "worker", Name: "total",
			Help: "Configured number of worker goroutines.",
		}),
		queriesHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "querymanager", Subsystem: "query", Name: "handled_total",
			Help: "Queries completed, labeled by opcode and final status.",
		}, []string{"opcode", "status"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "querymanager", Subsystem: "query", Name: "duration_seconds",
			Help:    "Time from dequeue to completion, labeled by opcode.",
			Buckets: prometheus.DefBuckets,
		}, []string{"opcode"}),
		retryAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "querymanager", Subsystem: "query", Name: "retry_attempts_total",
			Help: "Query attempts beyond the first, due to operational DB failure.",
		}),
		retryExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "querymanager", Subsystem: "query", Name: "retry_exhausted_total",
			Help: "Queries that failed on every attempt up to the configured maximum.",
		}),
		stmtCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "querymanager", Subsystem: "stmtcache", Name: "hits_total",
			Help: "Prepared statement cache hits across all worker sessions.",
		}),
		stmtCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "querymanager", Subsystem: "stmtcache", Name: "misses_total",
			Help: "Prepared statement cache misses across all worker sessions.",
		}),
		stmtCacheEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "querymanager", Subsystem: "stmtcache", Name: "evicted_total",
			Help: "Prepared statements evicted under LRU pressure.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "querymanager", Subsystem: "conn", Name: "active",
			Help: "Accepted connections currently open.",
		}),
		connectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "querymanager", Subsystem: "conn", Name: "idle",
			Help: "Open connections with no query in flight.",
		}),
		connectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "querymanager", Subsystem: "conn", Name: "accepted_total",
			Help: "Connections accepted since startup.",
		}),
		connectionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "querymanager", Subsystem: "conn", Name: "rejected_total",
			Help: "Connections rejected, labeled collectively (over MaxConnections).",
		}),
		loopbackRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "querymanager", Subsystem: "conn", Name: "loopback_rejected_total",
			Help: "Connection attempts refused for not originating from loopback.",
		}),
	}

	reg.MustRegister(
		c.queueDepth, c.queueCapacity,
		c.workersBusy, c.workersTotal,
		c.queriesHandled, c.queryDuration,
		c.retryAttempts, c.retryExhausted,
		c.stmtCacheHits, c.stmtCacheMisses, c.stmtCacheEvicted,
		c.connectionsActive, c.connectionsIdle,
		c.connectionsAccepted, c.connectionsRejected, c.loopbackRejected,
	)
	return c
}

func (c *Collector) SetQueueDepth(n int)    { c.queueDepth.Set(float64(n)) }
func (c *Collector) SetQueueCapacity(n int) { c.queueCapacity.Set(float64(n)) }

func (c *Collector) SetWorkersBusy(n int)  { c.workersBusy.Set(float64(n)) }
func (c *Collector) SetWorkersTotal(n int) { c.workersTotal.Set(float64(n)) }

func (c *Collector) QueryHandled(opcode, status string) {
	c.queriesHandled.WithLabelValues(opcode, status).Inc()
}

func (c *Collector) QueryDuration(opcode string, seconds float64) {
	c.queryDuration.WithLabelValues(opcode).Observe(seconds)
}

func (c *Collector) RetryAttempt()   { c.retryAttempts.Inc() }
func (c *Collector) RetryExhausted() { c.retryExhausted.Inc() }

func (c *Collector) StmtCacheHit()    { c.stmtCacheHits.Inc() }
func (c *Collector) StmtCacheMiss()   { c.stmtCacheMisses.Inc() }
func (c *Collector) StmtCacheEvicted() { c.stmtCacheEvicted.Inc() }

func (c *Collector) ConnectionAccepted() {
	c.connectionsAccepted.Inc()
	c.connectionsActive.Inc()
}

func (c *Collector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

func (c *Collector) ConnectionIdle(delta int) {
	c.connectionsIdle.Add(float64(delta))
}

func (c *Collector) ConnectionRejected() { c.connectionsRejected.Inc() }
func (c *Collector) LoopbackRejected()   { c.loopbackRejected.Inc() }

// Handler returns the HTTP handler serving this collector's registry, meant
// to be mounted at /metrics on a loopback-only listener.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}

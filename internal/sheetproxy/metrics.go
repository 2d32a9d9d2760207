package sheetproxy

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weekgrid_proxy_requests_total",
				Help: "Total number of proxy requests",
			},
			[]string{"action", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weekgrid_proxy_request_duration_seconds",
				Help:    "Proxy request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weekgrid_proxy_rows",
			Help: "Number of stored schedule rows",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.rows)
	return m
}

// middleware records one sample per request, labelled with the action the
// handler stored in the context.
func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		action := c.GetString(actionKey)
		if action == "" {
			action = "unknown"
		}
		m.requests.WithLabelValues(action, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	}
}

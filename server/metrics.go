package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the server's Prometheus metrics behind its own
// registry, keeping default Go runtime collectors out of the scrape.
type Collector struct {
	reg *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec // endpoint label
	RequestErrors    *prometheus.CounterVec // endpoint label
	AnalysisDuration *prometheus.HistogramVec
	ScheduleTrips    prometheus.Gauge
	ScheduleStops    prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		reg: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_analytics_requests_total",
			Help: "Total API requests served.",
		}, []string{"endpoint"}),
		RequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_analytics_request_errors_total",
			Help: "Total API requests that returned an error.",
		}, []string{"endpoint"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schedule_analytics_analysis_duration_seconds",
			Help:    "Duration of analysis computations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"endpoint"}),
		ScheduleTrips: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_analytics_schedule_trips",
			Help: "Trips in the loaded schedule snapshot.",
		}),
		ScheduleStops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_analytics_schedule_stops",
			Help: "Stops in the loaded schedule snapshot.",
		}),
	}
	reg.MustRegister(
		c.RequestsTotal, c.RequestErrors, c.AnalysisDuration,
		c.ScheduleTrips, c.ScheduleStops,
	)
	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

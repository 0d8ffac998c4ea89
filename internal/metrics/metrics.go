package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kodbot"

const (
	ResultOK       = "ok"
	ResultFallback = "fallback"
	ResultFailed   = "failed"
)

// Collector owns the bot's metrics on a private registry.
type Collector struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	firings     *prometheus.CounterVec
	buildInfo   *prometheus.GaugeVec
}

func New(version string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Post generations by result (ok or fallback).",
			},
			[]string{"result"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Channel deliveries by result (ok or failed).",
			},
			[]string{"result"},
		),
		firings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "firings_total",
				Help:      "Scheduled firings by slot.",
			},
			[]string{"slot"},
		),
		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_info",
				Help:      "Build information.",
			},
			[]string{"version"},
		),
	}

	c.registry.MustRegister(
		c.generations,
		c.deliveries,
		c.firings,
		c.buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.buildInfo.WithLabelValues(version).Set(1)

	return c
}

// The methods below are safe on a nil collector so callers can run without
// metrics.

func (c *Collector) ObserveGeneration(fallback bool) {
	if c == nil {
		return
	}

	result := ResultOK
	if fallback {
		result = ResultFallback
	}
	c.generations.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveDelivery(ok bool) {
	if c == nil {
		return
	}

	result := ResultOK
	if !ok {
		result = ResultFailed
	}
	c.deliveries.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveFiring(slot string) {
	if c == nil {
		return
	}
	c.firings.WithLabelValues(slot).Inc()
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

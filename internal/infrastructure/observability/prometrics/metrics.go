// Package prometrics adapts prometheus instruments to the observability
// metric ports. Instruments are declared up front in Register so the full
// metric surface is visible in one place.
package prometrics

import (
	"github.com/chronomart/storefront/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

type counter struct{ v *prometheus.CounterVec }

func (c counter) Add(d float64, labels ...observability.Label) {
	c.v.With(labelMap(labels)).Add(d)
}

type histogram struct{ v *prometheus.HistogramVec }

func (h histogram) Observe(val float64, labels ...observability.Label) {
	h.v.With(labelMap(labels)).Observe(val)
}

type metrics struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

func (m *metrics) Counter(name observability.MetricKey) observability.Counter {
	if c, ok := m.counters[name]; ok {
		return c
	}
	return observability.NopCounter()
}

func (m *metrics) Histogram(name observability.MetricKey) observability.Histogram {
	if h, ok := m.histograms[name]; ok {
		return h
	}
	return observability.NopHistogram()
}

type instrument struct {
	key    observability.MetricKey
	help   string
	labels []string
	// buckets non-nil means histogram
	buckets []float64
}

var instruments = []instrument{
	{key: observability.MHTTPRequests, help: "Total HTTP requests.", labels: []string{"method", "route", "status"}},
	{key: observability.MHTTPRequestDuration, help: "HTTP request duration in seconds.", labels: []string{"method", "route"}, buckets: prometheus.DefBuckets},
	{key: observability.MCartMutations, help: "Cart mutations applied, by operation and outcome.", labels: []string{"op", "outcome"}},
	{key: observability.MCheckoutRequests, help: "Checkout attempts, by outcome.", labels: []string{"outcome"}},
	{key: observability.MSettlementProcessed, help: "Settlement return signals processed, by outcome.", labels: []string{"outcome"}},
	{key: observability.MExternalRequests, help: "Calls to external collaborators.", labels: []string{"peer", "endpoint", "outcome"}},
	{key: observability.MExternalRequestDuration, help: "External call duration in seconds.", labels: []string{"peer", "endpoint"}, buckets: prometheus.DefBuckets},
}

// Register creates and registers the storefront metric set on the given
// registerer and returns it behind the Metrics port.
func Register(namespace string, reg prometheus.Registerer) observability.Metrics {
	m := &metrics{
		counters:   make(map[observability.MetricKey]observability.Counter),
		histograms: make(map[observability.MetricKey]observability.Histogram),
	}
	for _, in := range instruments {
		if in.buckets != nil {
			hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace, Name: string(in.key), Help: in.help, Buckets: in.buckets,
			}, in.labels)
			reg.MustRegister(hv)
			m.histograms[in.key] = histogram{v: hv}
			continue
		}
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: string(in.key), Help: in.help,
		}, in.labels)
		reg.MustRegister(cv)
		m.counters[in.key] = counter{v: cv}
	}
	return m
}

func labelMap(ls []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(ls))
	for _, l := range ls {
		m[l.Key] = l.Value
	}
	return m
}

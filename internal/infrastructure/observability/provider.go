// Package obsprovider assembles the concrete logger, metrics and tracer into
// the Observability port consumed by application services.
package obsprovider

import (
	"context"

	"github.com/chronomart/storefront/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type otelTracer struct{ t trace.Tracer }

func (o otelTracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.t.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Tracer wraps the global otel tracer for the given instrumentation name.
func Tracer(name string) observability.Tracer {
	return otelTracer{t: otel.Tracer(name)}
}

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics observability.Metrics
}

func (p provider) Tracer() observability.Tracer   { return p.tracer }
func (p provider) Logger() observability.Logger   { return p.logger }
func (p provider) Metrics() observability.Metrics { return p.metrics }

// New builds an Observability from the supplied parts, substituting no-ops
// for any nil part.
func New(tracer observability.Tracer, logger observability.Logger, metrics observability.Metrics) observability.Observability {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return provider{tracer: tracer, logger: logger, metrics: metrics}
}

// Package logctx carries a request-scoped logger on the context so handlers
// and use cases log with the request's trace and request id fields.
package logctx

import (
	"context"

	"github.com/chronomart/storefront/internal/observability"
)

type loggerKey struct{}

// With stores the provided logger on the context.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromOr returns the context logger, or fallback when none is stored.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(observability.Logger); ok && l != nil {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return observability.NopLogger()
}

package httpapi

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName        = "github.com/riskibarqy/fantasy-settlement/internal/interfaces/httpapi"
	handlerSpanPrefix = "httpapi.Handler."
)

// startHandlerSpan opens a child of the request span for one handler, using
// the provider that created the request span. Untraced requests get the
// no-op span already in ctx. Middleware records span events on the request
// span instead of opening spans of its own.
func startHandlerSpan(ctx context.Context, handler string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return parent.TracerProvider().Tracer(tracerName).Start(ctx, handlerSpanPrefix+handler)
}

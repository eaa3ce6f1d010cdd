package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// requestTelemetry records a span plus request count and latency metrics per
// request. Instruments are created once so middleware allocations stay per
// request only.
type requestTelemetry struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

func newRequestTelemetry() *requestTelemetry {
	meter := otel.Meter("account-security-core/httpapi")
	requests, _ := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Completed HTTP requests"))
	latency, _ := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("ms"))
	return &requestTelemetry{
		tracer:   otel.Tracer("account-security-core/httpapi"),
		requests: requests,
		latency:  latency,
	}
}

// telemetryMiddleware wraps each request in a server span and records request
// metrics keyed by method, route pattern and status. The route pattern (not
// the raw path) keeps metric cardinality bounded.
func (h *Handler) telemetryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.telemetry.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(recorder, r.WithContext(ctx))

		statusCode := recorder.statusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", statusCode),
		}
		span.SetName(r.Method + " " + route)
		span.SetAttributes(attrs...)
		h.telemetry.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
		h.telemetry.latency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0,
			metric.WithAttributes(attrs...))
	})
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/profile-web/config"
)

// tracerName is the instrumentation scope of spans started by this service.
const tracerName = "github.com/duynhne/profile-web"

const serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// InitTracing exports spans to the OTLP collector and installs the global
// tracer provider and W3C propagators. The caller shuts the provider down.
//
// Example:
//
//	tp, err := middleware.InitTracing(cfg)
//	defer tp.Shutdown(context.Background())
func InitTracing(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	if !cfg.Tracing.Enabled {
		return nil, errors.New("tracing is disabled (TRACING_ENABLED=false)")
	}
	if cfg.Tracing.Endpoint == "" {
		return nil, errors.New("OTEL_COLLECTOR_ENDPOINT is required when tracing is enabled")
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1.0 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got: %.2f", cfg.Tracing.SampleRate)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(cfg.Tracing.Endpoint),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	// A partial detection failure still yields a usable resource.
	res, _ := serviceResource(ctx, cfg.Service)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithExportTimeout(30*time.Second),
			sdktrace.WithMaxExportBatchSize(cfg.Tracing.MaxExportBatchSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Tracing.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, nil
}

// serviceIdentity resolves the service name and Kubernetes namespace.
// OTEL_SERVICE_NAME overrides the configured name; the namespace comes from
// POD_NAMESPACE, then the service account mount, then "default".
func serviceIdentity(configured string) (name, namespace string) {
	name = configured
	if env := os.Getenv("OTEL_SERVICE_NAME"); env != "" {
		name = env
	}

	namespace = os.Getenv("POD_NAMESPACE")
	if namespace == "" {
		if data, err := os.ReadFile(serviceAccountNamespaceFile); err == nil {
			namespace = strings.TrimSpace(string(data))
		}
	}
	if namespace == "" {
		namespace = "default"
	}
	return name, namespace
}

// serviceResource describes this replica: service identity from config,
// then OTEL_RESOURCE_ATTRIBUTES, host and runtime.
func serviceResource(ctx context.Context, svc config.ServiceConfig) (*resource.Resource, error) {
	name, namespace := serviceIdentity(svc.Name)
	attrs := []attribute.KeyValue{
		semconv.ServiceName(name),
		semconv.ServiceNamespace(namespace),
		semconv.DeploymentEnvironment(svc.Env),
	}
	if svc.Version != "" {
		attrs = append(attrs, semconv.ServiceVersion(svc.Version))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithProcessRuntimeVersion(),
	)
	if err != nil {
		return resource.NewWithAttributes(semconv.SchemaURL, attrs...),
			fmt.Errorf("resource detection partial failure (using fallback): %w", err)
	}
	return res, nil
}

// TracingMiddleware starts a server span per request, except for the paths
// in skip (health checks and the metrics endpoint).
//
// Usage:
//
//	r.Use(middleware.TracingMiddleware("/health", "/ready", cfg.Metrics.Path))
func TracingMiddleware(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return otelgin.Middleware(tracerName,
		otelgin.WithTracerProvider(otel.GetTracerProvider()),
		otelgin.WithFilter(func(r *http.Request) bool {
			_, ok := skipped[r.URL.Path]
			return !ok
		}),
	)
}

// StartSpan starts a child span of the span in ctx.
//
//	ctx, span := middleware.StartSpan(ctx, "profile.submit")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	//nolint:spancheck // span is returned to caller who is responsible for calling span.End()
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// AddSpanAttributes sets attributes on the span in ctx if it is recording.
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

// AddSpanEvent adds an event to the span in ctx, e.g. "session.busy".
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// RecordError records err on the span in ctx and marks it failed.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

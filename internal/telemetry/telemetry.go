// Package telemetry provides OpenTelemetry distributed tracing for the
// orchestrator's phases (upload, submit, await, download, fallback),
// adapted from the teacher's pkg/telemetry span-per-pipeline-stage
// pattern. The OTLP/gRPC exporter is dropped along with the teacher's
// grpc dependency (see DESIGN.md); only "stdout" and "none" remain.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/lattice-search/vecbuild/pkg/types"
)

const tracerName = "github.com/lattice-search/vecbuild"

// Config holds tracing configuration, from SPEC_FULL.md's
// telemetry.* keys.
type Config struct {
	// Enabled turns tracing on/off.
	Enabled bool

	// Exporter selects the trace exporter: "stdout" or "none".
	Exporter string

	// SampleRate controls the sampling ratio (0.0 to 1.0).
	SampleRate float64

	// ServiceName overrides the default service name.
	ServiceName string
}

// DefaultConfig returns tracing defaults (disabled).
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Exporter:    "none",
		SampleRate:  1.0,
		ServiceName: "vecbuild",
	}
}

// Provider wraps the OTEL TracerProvider and implements
// orchestrator.Tracer.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

// Init sets up the TracerProvider based on cfg. Returns a Provider
// that must be shut down with Shutdown().
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled || cfg.Exporter == "none" || cfg.Exporter == "" {
		return &Provider{tracer: trace.NewNoopTracerProvider().Tracer(tracerName)}, nil
	}

	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("telemetry: create stdout exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("telemetry: unsupported exporter %q (supported: stdout, none)", cfg.Exporter)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("0.1.0"),
		),
		resource.WithProcessRuntimeDescription(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRate < 1.0 {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{tp: tp, tracer: tp.Tracer(tracerName)}, nil
}

// Shutdown flushes pending spans and shuts down the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// StartPhase starts a span named "vecbuild.<name>" tagged with the
// job's segment, field, and engine, satisfying orchestrator.Tracer.
func (p *Provider) StartPhase(ctx context.Context, name string, job *types.SegmentBuildJob) (context.Context, func()) {
	spanCtx, span := p.tracer.Start(ctx, "vecbuild."+name,
		trace.WithAttributes(
			attribute.String("vecbuild.segment_id", job.SegmentID),
			attribute.String("vecbuild.field_name", job.FieldName),
			attribute.String("vecbuild.engine", job.Engine),
		),
	)
	return spanCtx, func() { span.End() }
}

// Package telemetry traces battles and tower runs over OTLP, usually to Honeycomb.
package telemetry

import (
	"context"
	"os"
	"runtime"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName    = "monstertower"
	serviceVersion = "0.1.0"
)

// enabled is set once Setup has installed an exporting provider.
var enabled atomic.Bool

// RunInfo describes the simulator run every exported span belongs to.
type RunInfo struct {
	Mode        string
	Seed        int64
	EnemyTeams  int
	SimpleStats bool
}

// attributes returns the resource attributes for run.
func (r RunInfo) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
		attribute.String("host.name", getHostname()),
		attribute.String("os.type", runtime.GOOS),
		attribute.String("process.runtime.version", runtime.Version()),
		attribute.String("monstertower.mode", r.Mode),
		attribute.Int64("monstertower.seed", r.Seed),
		attribute.Bool("monstertower.simple_stats", r.SimpleStats),
	}
	if r.EnemyTeams > 0 {
		attrs = append(attrs, attribute.Int("monstertower.enemy_teams", r.EnemyTeams))
	}
	return attrs
}

// Setup installs an OTLP HTTP trace exporter configured from the standard
// OTEL_EXPORTER_OTLP_* variables and tags its resource with run. Tracers
// handed out afterwards record spans; the returned function flushes them.
func Setup(ctx context.Context, run RunInfo) (shutdown func(context.Context) error, err error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	// No merge with resource.Default(): its schema URL can conflict.
	res, err := resource.New(ctx, resource.WithAttributes(run.attributes()...))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	enabled.Store(true)

	return func(ctx context.Context) error {
		enabled.Store(false)
		return tp.Shutdown(ctx)
	}, nil
}

// Enabled reports whether Setup has installed an exporter.
func Enabled() bool { return enabled.Load() }

// Tracer returns the tracer for a component, or NoopTracer when telemetry
// is not set up.
func Tracer(name string) trace.Tracer {
	if !Enabled() {
		return NoopTracer()
	}
	return otel.GetTracerProvider().Tracer(serviceName + "/" + name)
}

// NoopTracer returns a tracer that records nothing.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(serviceName + "/noop")
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

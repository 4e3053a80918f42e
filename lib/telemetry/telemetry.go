package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"giftbot/lib/configutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
)

func Tracer(name string) oteltrace.Tracer {
	return otel.Tracer(name)
}

// searches up the filesystem from the cwd to find a file called
// telemetry.json5, once found it will be used as the exporter config.
// a missing config file is not an error, exporting just stays off.
func SetupFromEnv(ctx context.Context, serviceName string) error {
	cfg, err := configutil.ReadRecursively[config]("telemetry.json5")
	if os.IsNotExist(err) {
		slog.Debug("no telemetry config found, exporting disabled")
		return nil
	}
	if err != nil {
		return err
	}
	return Setup(ctx, serviceName, cfg)
}

func Setup(ctx context.Context, serviceName string, cfg config) error {
	r, err := newResource(serviceName)
	if err != nil {
		return err
	}

	tracerProvider, err = newTraceProvider(ctx, r, cfg)
	if err != nil {
		return err
	}
	otel.SetTracerProvider(tracerProvider)

	meterProvider, err = newMetricProvider(ctx, r, cfg)
	if err != nil {
		return err
	}
	otel.SetMeterProvider(meterProvider)

	return nil
}

func Shutdown(ctx context.Context) error {
	var errlist []error
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			errlist = append(errlist, err)
		}
	}
	if meterProvider != nil {
		if err := meterProvider.Shutdown(ctx); err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}

var setupTestEnvironments = map[string]bool{}

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once
func SetupForTesting(serviceName string) func() {
	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		panic(err)
	}

	return func() {
		err := Shutdown(context.Background())
		if err != nil {
			panic(err)
		}
	}
}

package telemetry

import (
	"log/slog"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentResty wraps every request of the client in a span and logs
// request/response pairs at debug level.
func InstrumentResty(client *resty.Client, tracerName string) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(onBeforeRequest(tracer))
	client.OnAfterResponse(onAfterResponse)
	client.OnError(onError)
}

func onBeforeRequest(tracer trace.Tracer) resty.RequestMiddleware {
	return func(cli *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), req.Method)
		if slog.Default().Enabled(ctx, slog.LevelDebug) {
			slog.DebugContext(ctx, "start request", "method", req.Method, "url", req.URL)
		}
		req.SetContext(ctx)
		return nil
	}
}

func onAfterResponse(cli *resty.Client, res *resty.Response) error {
	span := trace.SpanFromContext(res.Request.Context())
	defer span.End()

	span.SetAttributes(
		attribute.String("url", res.Request.URL),
		attribute.Int("status_code", res.StatusCode()),
	)
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}

	if slog.Default().Enabled(res.Request.Context(), slog.LevelDebug) {
		slog.DebugContext(
			res.Request.Context(), "end request",
			"method", res.Request.Method,
			"url", res.Request.URL,
			"status", res.Status(),
		)
	}
	return nil
}

func onError(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, "transport error")
}

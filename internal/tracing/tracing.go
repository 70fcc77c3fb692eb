package tracing

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Controller владеет TracerProvider и завершает его при остановке.
type Controller struct {
	provider *sdktrace.TracerProvider
}

// Init настраивает глобальный TracerProvider с экспортом в Jaeger.
// Пустой endpoint оставляет no-op провайдер по умолчанию.
func Init(endpoint, serviceName string) (*Controller, error) {
	if endpoint == "" {
		return &Controller{}, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, fmt.Errorf("create jaeger exporter: %w", err)
	}

	return install(sdktrace.WithBatcher(exporter), serviceName), nil
}

func install(processor sdktrace.TracerProviderOption, serviceName string) *Controller {
	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	return &Controller{provider: tp}
}

// Shutdown сбрасывает незаписанные спаны.
func (c *Controller) Shutdown(ctx context.Context) error {
	if c == nil || c.provider == nil {
		return nil
	}
	return c.provider.Shutdown(ctx)
}

// Middleware открывает серверный спан на каждый HTTP-запрос.
func Middleware(serviceName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			name := req.Method + " " + c.Path()

			ctx, span := otel.Tracer(serviceName).Start(req.Context(), name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", req.Method),
					attribute.String("http.route", c.Path()),
				),
			)
			defer span.End()

			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				span.RecordError(err)
				c.Error(err)
			}

			status := c.Response().Status
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= 500 {
				span.SetStatus(codes.Error, "server error")
			}
			return nil
		}
	}
}

package middleware

import (
	"errors"
	"fmt"
	"strings"

	"hrdesk/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware opens a server span per request. Once routing is done
// the span is renamed after the matched route and tagged with the user or
// profile the path addresses.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		if requestID := c.Locals("requestid"); requestID != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprintf("%v", requestID)))
		}
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		span.SetAttributes(resourceAttributes(c, route)...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}
		return err
	}
}

// resourceAttributes names the record behind the :id segment of a route.
// Profile routes are admin only, so they also carry the acting admin.
func resourceAttributes(c *fiber.Ctx, route string) []attribute.KeyValue {
	id := c.Params("id")
	if id == "" {
		return nil
	}
	switch {
	case strings.HasPrefix(route, "/api/users/"):
		return []attribute.KeyValue{attribute.String("user.id", id)}
	case strings.HasPrefix(route, "/api/profiles/"):
		attrs := []attribute.KeyValue{attribute.String("profile.id", id)}
		if optionID := c.Params("optionId"); optionID != "" {
			attrs = append(attrs, attribute.String("profile.option_id", optionID))
		}
		if admin := c.Locals("userID"); admin != nil {
			attrs = append(attrs, attribute.String("admin.id", fmt.Sprintf("%v", admin)))
		}
		return attrs
	}
	return nil
}

package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RequestMetrics records request counts and durations on the given meter.
// Returns a pass-through middleware when meter is nil.
func RequestMetrics(meter metric.Meter) (echo.MiddlewareFunc, error) {
	if meter == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }, nil
	}
	requests, err := meter.Int64Counter("taskhub_http_requests_total",
		metric.WithDescription("HTTP requests by route and status."))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("taskhub_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds."))
	if err != nil {
		return nil, err
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("route", c.Path()),
				attribute.String("status", strconv.Itoa(status)),
			)
			ctx := c.Request().Context()
			requests.Add(ctx, 1, attrs)
			duration.Record(ctx, time.Since(start).Seconds(), attrs)
			return err
		}
	}, nil
}

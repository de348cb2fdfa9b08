package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDHeader carries the correlation id of a request
const RequestIDHeader = "X-Request-ID"

// RequestID makes sure every request has an X-Request-ID. An incoming id is
// kept, otherwise a new uuid is generated and echoed in the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
				req.Header.Set(RequestIDHeader, id)
			}
			c.Response().Header().Set(RequestIDHeader, id)
			return next(c)
		}
	}
}

// AccessLog writes one structured line per request
func AccessLog(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			if logger == nil {
				return nil
			}

			req := c.Request()
			fields := []zap.Field{
				zap.String("request_id", req.Header.Get(RequestIDHeader)),
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			}
			if c.Response().Status >= 500 {
				logger.Error("http.request", fields...)
			} else {
				logger.Info("http.request", fields...)
			}
			return nil
		}
	}
}

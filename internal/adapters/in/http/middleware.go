package http

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Observer records one finished request.
type Observer interface {
	ObserveHTTP(method, path string, status int, elapsed time.Duration)
}

// observe reports every request under its route pattern so ids in the path do
// not explode label cardinality.
func observe(o Observer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			o.ObserveHTTP(c.Request().Method, path, c.Response().Status, time.Since(start))
			return nil
		}
	}
}

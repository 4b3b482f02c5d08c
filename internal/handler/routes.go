// Package handler contains the Echo handlers and route table.
package handler

import (
	"github.com/labstack/echo/v4"

	"novo-proxy-go/internal/config"
	"novo-proxy-go/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, proxy *ProxyHandler, health *HealthHandler, m *metrics.Metrics) {
	e.GET("/healthz", health.Healthz)
	e.GET("/proxy/status", health.Status)

	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(m.Handler()))
	}

	e.Any(cfg.Proxy.Prefix, proxy.Handle)
	e.Any(cfg.Proxy.Prefix+"/*", proxy.Handle)
}
